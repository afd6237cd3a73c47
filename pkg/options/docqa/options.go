// Package docqa provides document Q&A pipeline configuration options.
package docqa

import (
	"fmt"

	"github.com/kart-io/docqa/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains pipeline-specific configuration.
type Options struct {
	// ChunkSize is the target size of text chunks in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ContextTopN is the number of search results assembled into the prompt.
	ContextTopN int `json:"context-top-n" mapstructure:"context-top-n"`

	// SnippetLength is the maximum length of source snippets in responses.
	SnippetLength int `json:"snippet-length" mapstructure:"snippet-length"`

	// Collection is the name of the Milvus collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// UploadDir is the directory where uploaded documents are persisted.
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir"`

	// Temperature is the sampling temperature for answer generation.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens is the generation token budget per answer.
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:     1000,
		ChunkOverlap:  200,
		TopK:          5,
		ContextTopN:   3,
		SnippetLength: 200,
		Collection:    "docqa_documents",
		EmbeddingDim:  768, // nomic-embed-text dimension
		UploadDir:     "_output/docqa-uploads",
		Temperature:   0.1,
		MaxTokens:     500,
	}
}

// AddFlags adds flags for pipeline options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"docqa.chunk-size", o.ChunkSize, "Target size of text chunks in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"docqa.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks in characters.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"docqa.top-k", o.TopK, "Number of results from similarity search.")
	fs.IntVar(&o.ContextTopN, options.Join(prefixes...)+"docqa.context-top-n", o.ContextTopN, "Number of search results assembled into the prompt.")
	fs.IntVar(&o.SnippetLength, options.Join(prefixes...)+"docqa.snippet-length", o.SnippetLength, "Maximum length of source snippets in responses.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"docqa.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"docqa.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.UploadDir, options.Join(prefixes...)+"docqa.upload-dir", o.UploadDir, "Directory for persisting uploaded documents.")
	fs.Float64Var(&o.Temperature, options.Join(prefixes...)+"docqa.temperature", o.Temperature, "Sampling temperature for answer generation.")
	fs.IntVar(&o.MaxTokens, options.Join(prefixes...)+"docqa.max-tokens", o.MaxTokens, "Generation token budget per answer.")
}

// Validate validates the pipeline options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be in [0, chunk-size)"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.ContextTopN <= 0 {
		errs = append(errs, fmt.Errorf("context-top-n must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	return errs
}

// Complete completes the pipeline options with defaults.
func (o *Options) Complete() error {
	if o.SnippetLength <= 0 {
		o.SnippetLength = 200
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 500
	}
	return nil
}
