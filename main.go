package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blog_pipeline/config"
	"blog_pipeline/document"
	"blog_pipeline/generator"
	"blog_pipeline/imagegen"
	"blog_pipeline/pipeline"
	"blog_pipeline/search"
)

var rootCmd = &cobra.Command{
	Use:   "blog-pipeline",
	Short: "Generate SEO blog posts from keywords",
	Long: `blog-pipeline searches the keywords, picks a category, writes a title,
subheadings and one section at a time, adds illustrations and link
suggestions, and saves the post as DOCX, PDF or HTML.

Run "serve" for the HTTP API or "generate" for a single post.`,
	SilenceUsage: true,
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./blog-pipeline.yaml or ~/.config/blog-pipeline/blog-pipeline.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable info logs")
	rootCmd.PersistentFlags().Bool("mock", false, "use canned model, image and search answers instead of the real services")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("blog-pipeline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "blog-pipeline"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig decodes the global viper state and checks credentials unless
// the run is mocked.
func loadConfig(cmd *cobra.Command) (config.Config, bool, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, false, err
	}
	mock, _ := cmd.Flags().GetBool("mock")
	if !mock {
		if err := cfg.ValidateCredentials(); err != nil {
			return config.Config{}, false, err
		}
	}
	return cfg, mock, nil
}

// buildPipeline wires the collaborators named in cfg, or the canned ones
// when mock is set.
func buildPipeline(ctx context.Context, cfg config.Config, mock bool) (*pipeline.Pipeline, *generator.Agent, error) {
	var (
		llm      generator.LLMClient
		images   imagegen.Fetcher
		searcher search.Searcher
		err      error
	)
	if mock {
		log.Printf("[cli] mock mode: no external calls")
		llm, images, searcher = generator.MockLLM{}, imagegen.MockFetcher{}, search.MockSearcher{}
	} else {
		if llm, err = buildLLM(cfg); err != nil {
			return nil, nil, err
		}
		if images, err = buildImages(ctx, cfg); err != nil {
			return nil, nil, err
		}
		if searcher, err = buildSearch(cfg); err != nil {
			return nil, nil, err
		}
	}

	agent, err := generator.NewAgent(llm, nil)
	if err != nil {
		return nil, nil, err
	}
	format, err := document.ParseFormat(cfg.Pipeline.Format)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(pipeline.Options{
		Agent:       agent,
		Searcher:    searcher,
		Images:      images,
		Logger:      log.Default(),
		Verbose:     cfg.Verbose,
		MaxImages:   cfg.Pipeline.MaxImages,
		Subheadings: cfg.Pipeline.Subheadings,
		Format:      format,
		WorkDir:     cfg.Pipeline.WorkDir,
		Site:        cfg.Search.Site,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, agent, nil
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "groq", "deepseek":
		// OpenAI compatible endpoints; base_url selects the vendor.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider %s requires base_url (OpenAI-compatible endpoint)", cfg.LLM.Provider)
		}
		return generator.NewOpenAILLMFromConfig(settings)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func buildImages(ctx context.Context, cfg config.Config) (imagegen.Fetcher, error) {
	switch cfg.Image.Provider {
	case "huggingface":
		return imagegen.NewHuggingFace(cfg.Image.BaseURL, cfg.Image.Model, cfg.Image.APIKey, &http.Client{Timeout: 120 * time.Second})
	case "gemini":
		return imagegen.NewGemini(ctx, cfg.Image.APIKey, cfg.Image.Model, cfg.Image.BaseURL)
	default:
		return nil, fmt.Errorf("image provider %s not supported", cfg.Image.Provider)
	}
}

func buildSearch(cfg config.Config) (search.Searcher, error) {
	return search.NewClient(search.Settings{
		Username: cfg.Search.Username,
		Password: cfg.Search.Password,
		BaseURL:  cfg.Search.BaseURL,
		Domain:   cfg.Search.Domain,
		Locale:   cfg.Search.Locale,
	}, nil)
}
