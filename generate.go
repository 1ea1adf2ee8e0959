package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blog_pipeline/document"
	"blog_pipeline/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one blog post and write it to disk",
	Long: `generate runs the whole pipeline once for the given keywords and copies the
finished document to --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		keywords, _ := flags.GetStringSlice("keyword")
		req := generator.BlogRequest{Keywords: keywords}
		req.ContentType, _ = flags.GetString("type")
		req.TargetAudience, _ = flags.GetString("audience")
		req.Tone, _ = flags.GetString("tone")
		req.PointOfView, _ = flags.GetString("pov")
		req.TargetCountry, _ = flags.GetString("country")

		formatName, _ := flags.GetString("format")
		var format document.Format
		if formatName != "" {
			f, err := document.ParseFormat(formatName)
			if err != nil {
				return err
			}
			format = f
		}

		cfg, mock, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, _, err := buildPipeline(cmd.Context(), cfg, mock)
		if err != nil {
			return err
		}

		log.Printf("[cli] generating keywords=%q country=%q", req.Keywords, req.TargetCountry)
		res, err := p.Run(cmd.Context(), req, format)
		if err != nil {
			return err
		}
		defer res.Close()

		out, _ := flags.GetString("out")
		if out == "" {
			out = res.Filename
		}
		if err := copyFile(res, out); err != nil {
			return err
		}
		log.Printf("[cli] done title=%q sections=%d", res.Draft.Title, len(res.Draft.Sections))
		fmt.Println(out)
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringSliceP("keyword", "k", nil, "keyword to search (repeatable or comma separated)")
	f.String("type", "Informative", "content type, e.g. How-to or Listicle")
	f.String("audience", "parents", "target audience")
	f.String("tone", "Friendly", "writing tone")
	f.String("pov", "second person", "point of view")
	f.String("country", "United States", "target country for search results")
	f.String("format", "", "output format: docx, pdf or html (default from config)")
	f.StringP("out", "o", "", "output path (default: Generated_Blog_Post.<ext>)")
	f.Int("subheadings", 0, "number of sections (overrides pipeline.subheadings)")
	f.Int("max-images", 0, "section image cap (overrides pipeline.max_images)")
	_ = generateCmd.MarkFlagRequired("keyword")
	_ = viper.BindPFlag("pipeline.subheadings", f.Lookup("subheadings"))
	_ = viper.BindPFlag("pipeline.max_images", f.Lookup("max-images"))

	rootCmd.AddCommand(generateCmd)
}

type opener interface {
	Open() (io.ReadCloser, error)
}

func copyFile(src opener, dst string) error {
	in, err := src.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return out.Close()
}
