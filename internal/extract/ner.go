package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/agenthands/atlas/internal/core/model"
)

// DefaultNERModel is the token-classification model used by the rule-based
// backend.
const DefaultNERModel = "KnightsAnalytics/distilbert-NER"

// NERExtractor finds place mentions with a local token-classification model.
// It carries no sentiment signal, so every mention reports SentimentUnknown.
type NERExtractor struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
}

// NewNERExtractor downloads the model if needed and builds the NER pipeline.
func NewNERExtractor(modelName, modelDir string) (*NERExtractor, error) {
	if modelName == "" {
		modelName = DefaultNERModel
	}

	modelPath, err := prepareModel(modelName, modelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "place-ner",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return &NERExtractor{session: session, pipeline: nerPipeline}, nil
}

func (e *NERExtractor) Backend() model.Source { return model.SourceNER }

func (e *NERExtractor) Extract(ctx context.Context, text string) ([]model.RawMention, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ExtractionError{Backend: model.SourceNER, Err: err}
	}

	result, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, &ExtractionError{Backend: model.SourceNER, Err: err}
	}
	if len(result.Entities) == 0 {
		return nil, nil
	}

	var mentions []model.RawMention
	for _, entity := range result.Entities[0] {
		if !isLocationLabel(entity.Entity) {
			continue
		}
		name := strings.TrimSpace(entity.Word)
		if name == "" {
			continue
		}
		mentions = append(mentions, model.RawMention{
			Text:      name,
			Context:   sentenceAround(text, int(entity.Start), int(entity.End)),
			Sentiment: model.SentimentUnknown,
			Source:    model.SourceNER,
		})
	}
	return mentions, nil
}

func (e *NERExtractor) Close() error {
	return e.session.Destroy()
}

// isLocationLabel strips BIO prefixes and keeps location-like entity types.
func isLocationLabel(label string) bool {
	label = strings.TrimPrefix(label, "B-")
	label = strings.TrimPrefix(label, "I-")
	return label == "LOC" || label == "GPE" || label == "FAC"
}

// prepareModel downloads the model into modelDir if it is not already there
// and returns the local model path.
func prepareModel(modelName, modelDir string) (string, error) {
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model %q: %w", modelName, err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}
