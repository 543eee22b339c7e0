package ml

import (
	"context"
	"fmt"

	"github.com/franckalain/lymegrove/internal/models"
)

// Image is an uploaded photo. Its content does not influence the mock model.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Model represents a plant health model that can analyze images
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Analyze takes an image and returns a health diagnosis
	Analyze(ctx context.Context, img Image) (*models.AnalysisResult, error)
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the model type
func NewModel(modelType string, config MockConfig, opts ...MockOption) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "", "mock":
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid mock config: %w", err)
		}
		factory = NewMockModelFactory(config, opts...)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}
