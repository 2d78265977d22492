package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimyag/pvetpl/internal/pvetpl/config"
	"github.com/jimyag/pvetpl/internal/pvetpl/prompt"
	"github.com/jimyag/pvetpl/internal/pvetpl/repository"
	"github.com/jimyag/pvetpl/internal/pvetpl/service"
	"github.com/jimyag/pvetpl/pkg/qm"
	"github.com/jimyag/pvetpl/pkg/virtcustomize"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List downloaded images and built templates",
	}
	cmd.AddCommand(newListImagesCmd())
	cmd.AddCommand(newListTemplatesCmd())
	return cmd
}

func newListImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List images recorded in the local catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, repo, err := openCatalog()
			if err != nil {
				return err
			}
			defer repo.Close()

			images, err := service.NewImageService(repo, prompt.New(), cfg.ImagesDir()).ListImages(ctx)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				fmt.Println("No images in the catalog yet")
				return nil
			}

			fmt.Printf("%-20s %-15s %10s  %s\n", "ID", "RELEASE", "SIZE", "PATH")
			fmt.Println(strings.Repeat("-", 80))
			for _, img := range images {
				fmt.Printf("%-20s %-15s %8.1fGB  %s\n",
					img.ID,
					img.Release,
					float64(img.SizeBytes)/(1024*1024*1024),
					img.Path,
				)
			}
			fmt.Printf("\nTotal: %d image(s)\n", len(images))
			return nil
		},
	}
}

func newListTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List templates recorded in the local catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, repo, err := openCatalog()
			if err != nil {
				return err
			}
			defer repo.Close()

			// 列目录不需要真实的 qm / virt-customize
			templateService := service.NewTemplateService(
				qm.NewClientWithPath("qm"),
				virtcustomize.NewClientWithPath("virt-customize"),
				repo,
				cfg.SnippetsDir,
				cfg.SnippetsStorage,
			)
			templates, err := templateService.ListTemplates(ctx)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println("No templates in the catalog yet")
				return nil
			}

			fmt.Printf("%-20s %8s  %-25s %-12s %s\n", "ID", "VMID", "NAME", "STORAGE", "CREATED")
			fmt.Println(strings.Repeat("-", 90))
			for _, tpl := range templates {
				fmt.Printf("%-20s %8d  %-25s %-12s %s\n",
					tpl.ID,
					tpl.VMID,
					tpl.Name,
					tpl.Storage,
					tpl.CreatedAt,
				)
			}
			fmt.Printf("\nTotal: %d template(s)\n", len(templates))
			return nil
		},
	}
}

func openCatalog() (*config.Config, *repository.Repository, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.New(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog database: %w", err)
	}
	return cfg, repo, nil
}
