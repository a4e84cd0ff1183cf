package textsource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Trip report</title><style>body { color: red; }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<script>console.log("tracking");</script>
<p>We spent   three days in Lisbon.</p>
<p>The food at Time Out Market was incredible.</p>
<footer>© travel blog</footer>
</body>
</html>`

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	text, err := FromURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "We spent three days in Lisbon.")
	assert.Contains(t, text, "Time Out Market")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "travel blog")
}

func TestFromURLNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FromURL(context.Background(), srv.URL)
	assert.Error(t, err)
}
