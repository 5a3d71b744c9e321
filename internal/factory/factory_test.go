package factory

import (
	"testing"
	"time"

	"go-shoe-studio/internal/config"
	"go-shoe-studio/internal/genai/gemini"
	"go-shoe-studio/internal/genai/mock"
	"go-shoe-studio/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		GeminiBaseURL:     "https://generativelanguage.googleapis.com",
		GeminiModel:       "gemini-2.5-flash-image",
		TransformTimeout:  time.Minute,
		ImageFetchTimeout: time.Second,
		AssetBaseURL:      "https://assets.example.com/static",
		LocalAssetDir:     "public",
	}
}

func TestCreateGenerator(t *testing.T) {
	f := NewComponentFactory(testConfig())

	gen, err := f.GeneratorFactory.CreateGenerator(GeminiGenerator)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	client, ok := gen.(*gemini.Client)
	if !ok {
		t.Fatalf("Expected *gemini.Client, got %T", gen)
	}
	if err := client.CheckCredential(); err == nil {
		t.Error("Expected missing key to be reported")
	}

	gen, err = f.GeneratorFactory.CreateGenerator(MockGenerator)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := gen.(*mock.Generator); !ok {
		t.Errorf("Expected *mock.Generator, got %T", gen)
	}

	if _, err := f.GeneratorFactory.CreateGenerator("dalle"); err == nil {
		t.Error("Expected error for unsupported generator type")
	}
}

func TestCreateGenerator_BadBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiBaseURL = "ftp://example.com"
	if _, err := NewGeneratorFactory(cfg).CreateGenerator(GeminiGenerator); err == nil {
		t.Error("Expected error for non-http base URL")
	}
}

func TestCreateStorage(t *testing.T) {
	f := NewStorageFactory(testConfig())

	fetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := fetcher.(*storage.HTTPAssetFetcher); !ok {
		t.Errorf("Expected *storage.HTTPAssetFetcher, got %T", fetcher)
	}

	fetcher, err = f.CreateStorage(LocalStorage)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := fetcher.(*storage.LocalAssetFetcher); !ok {
		t.Errorf("Expected *storage.LocalAssetFetcher, got %T", fetcher)
	}

	if _, err := f.CreateStorage("ftp"); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
}

func TestCreateStorage_BadAssetURL(t *testing.T) {
	cfg := testConfig()
	cfg.AssetBaseURL = "https://assets.example.com/?token=1"
	if _, err := NewStorageFactory(cfg).CreateStorage(HTTPStorage); err == nil {
		t.Error("Expected error for base URL with a query")
	}
}
