package factory

import (
	"fmt"

	"go-shoe-studio/internal/config"
	"go-shoe-studio/internal/genai"
	"go-shoe-studio/internal/genai/gemini"
	"go-shoe-studio/internal/genai/mock"
	"go-shoe-studio/internal/storage"
	"go-shoe-studio/pkg/validation"
)

// GeneratorType represents the image model backends
type GeneratorType string

const (
	// GeminiGenerator calls the hosted Gemini image model
	GeminiGenerator GeneratorType = config.GenAIGemini
	// MockGenerator echoes the sketch back, for local runs without a key
	MockGenerator GeneratorType = config.GenAIMock
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for template assets served over HTTP
	HTTPStorage StorageType = config.StorageHTTP
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = config.StorageAzure
	// LocalStorage for local file system
	LocalStorage StorageType = config.StorageLocal
)

// GeneratorFactory creates image model clients
type GeneratorFactory interface {
	CreateGenerator(generatorType GeneratorType) (genai.Generator, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.AssetFetcher, error)
}

type generatorFactory struct {
	cfg *config.Config
}

// NewGeneratorFactory creates a new generator factory
func NewGeneratorFactory(cfg *config.Config) GeneratorFactory {
	return &generatorFactory{cfg: cfg}
}

// CreateGenerator creates a generator. A Gemini client is built even without
// a usable key; transforms then fail with a configuration error.
func (f *generatorFactory) CreateGenerator(generatorType GeneratorType) (genai.Generator, error) {
	switch generatorType {
	case GeminiGenerator:
		if err := validation.NewURLValidator().ValidateBaseURL(f.cfg.GeminiBaseURL); err != nil {
			return nil, fmt.Errorf("GEMINI_BASE_URL: %w", err)
		}
		return gemini.New(gemini.Options{
			BaseURL: f.cfg.GeminiBaseURL,
			Model:   f.cfg.GeminiModel,
			APIKey:  f.cfg.GeminiAPIKey,
			Timeout: f.cfg.TransformTimeout,
		}), nil
	case MockGenerator:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unsupported generator type: %s", generatorType)
	}
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.AssetFetcher, error) {
	switch storageType {
	case HTTPStorage:
		if err := validation.NewURLValidator().ValidateBaseURL(f.cfg.AssetBaseURL); err != nil {
			return nil, fmt.Errorf("ASSET_BASE_URL: %w", err)
		}
		return storage.NewHTTPAssetFetcher(f.cfg.AssetBaseURL, f.cfg.ImageFetchTimeout), nil
	case AzureStorage:
		fetcher, err := storage.NewAzureAssetFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.AzureStorageContainer)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case LocalStorage:
		return storage.NewLocalAssetFetcher(f.cfg.LocalAssetDir), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	GeneratorFactory GeneratorFactory
	StorageFactory   StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		GeneratorFactory: NewGeneratorFactory(cfg),
		StorageFactory:   NewStorageFactory(cfg),
	}
}
