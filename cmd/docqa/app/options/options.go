// Package options contains flags and options for initializing the DocQA server.
package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	docqasvc "github.com/kart-io/docqa/internal/docqa"
	cliflag "github.com/kart-io/docqa/pkg/app/cliflag"
	cacheopts "github.com/kart-io/docqa/pkg/options/cache"
	docqaopts "github.com/kart-io/docqa/pkg/options/docqa"
	llmopts "github.com/kart-io/docqa/pkg/options/llm"
	logopts "github.com/kart-io/docqa/pkg/options/logger"
	milvusopts "github.com/kart-io/docqa/pkg/options/milvus"
	httpopts "github.com/kart-io/docqa/pkg/options/server/http"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// DocQAOptions contains pipeline-specific configuration.
	DocQAOptions *docqaopts.Options `json:"docqa" mapstructure:"docqa"`

	// CacheOptions contains cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8083"

	return &ServerOptions{
		HTTPOptions:      httpOpts,
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		DocQAOptions:     docqaopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding.")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"), "chat.")
	o.DocQAOptions.AddFlags(fss.FlagSet("docqa"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.DocQAOptions.Complete(); err != nil {
		return fmt.Errorf("docqa: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.DocQAOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds a docqasvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*docqasvc.Config, error) {
	return &docqasvc.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		DocQAOptions:     o.DocQAOptions,
		CacheOptions:     o.CacheOptions,
	}, nil
}
