package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jrmnl/yandex-techstore/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format      string
	CatalogPath string
	PromoPath   string
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	settings, settingsErr := config.GetAppSettings()
	if settingsErr != nil {
		settings = config.AppSettings{CatalogPath: "data/products.json"}
	}

	cmd := &cobra.Command{
		Use:   "techstore",
		Short: "TechStore - витрина магазина техники",
		Long:  "Каталог с фильтрами, корзина и промокоды. Запускает HTTP API или считает из командной строки.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if settingsErr != nil {
				return WrapExitError(ExitCommandError, "Некорректная конфигурация", settingsErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("недопустимый формат %q: допустимы %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "формат вывода (json|text)")
	cmd.PersistentFlags().StringVar(&opts.CatalogPath, "catalog", settings.CatalogPath, "путь к JSON каталогу")
	cmd.PersistentFlags().StringVar(&opts.PromoPath, "promo-file", settings.PromoPath, "YAML таблица промокодов")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewTotalsCommand(opts))

	return cmd
}
