package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agenthands/atlas/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func sample(name string) model.Map {
	m := model.NewMap(name)
	m.Places = []model.Place{
		{
			ID:             model.PlaceID(48.8584, 2.2945),
			Name:           "Eiffel Tower",
			Lat:            48.8584,
			Lng:            2.2945,
			Tag:            "landmark",
			Sentiment:      model.SentimentPositive,
			SourceContexts: []string{"We watched the sunset from the Eiffel Tower."},
		},
	}
	return m
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := newStore(t)
	m := sample("paris")
	require.NoError(t, s.Save(m))

	got, err := s.Load("paris")
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Places, got.Places)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestLoadMissingMap(t *testing.T) {
	s := newStore(t)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExistsAndList(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.Exists("paris"))

	require.NoError(t, s.Save(sample("paris")))
	require.NoError(t, s.Save(sample("kyoto")))

	assert.True(t, s.Exists("paris"))
	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"kyoto", "paris"}, names)
}

func TestSaveRejectsDuplicateIDs(t *testing.T) {
	s := newStore(t)
	m := sample("paris")
	m.Places = append(m.Places, m.Places[0])

	err := s.Save(m)
	var iv *InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "paris", iv.MapName)
	assert.False(t, s.Exists("paris"))
}

func TestSaveIsFullReplace(t *testing.T) {
	s := newStore(t)
	m := sample("paris")
	require.NoError(t, s.Save(m))

	m.Places = nil
	require.NoError(t, s.Save(m))

	got, err := s.Load("paris")
	require.NoError(t, err)
	assert.Empty(t, got.Places)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(sample("paris")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "paris.json", entries[0].Name())
}

func TestMapNameSanitized(t *testing.T) {
	s := newStore(t)
	m := sample("../escape")
	err := s.Save(m)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = s.Load(filepath.Join("..", "escape"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(sample("paris")))
	require.NoError(t, s.Delete("paris"))
	assert.False(t, s.Exists("paris"))
	assert.ErrorIs(t, s.Delete("paris"), ErrNotFound)
}
