package main

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-widgetgen/pkg/compiler"
	"github.com/goliatone/go-widgetgen/pkg/generator"
	"github.com/goliatone/go-widgetgen/pkg/page"
	"github.com/goliatone/go-widgetgen/pkg/prompt"
)

var (
	widgetFlag string
	skinFlag   string
	copyFlag   bool
)

var (
	clipboardWriteAll = clipboard.WriteAll
	newFiller         = func() *prompt.Filler {
		return prompt.New(prompt.WithSkip("widget", "skin_id"))
	}
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Choose a widget and skin, fill their forms and print the widget code",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		gen, err := openSession(ctx, cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		sel := gen.Selectors()
		pg := gen.Page()
		filler := newFiller()

		widgetOptions, err := pg.Options(sel.WidgetSelect)
		if err != nil {
			return fmt.Errorf("list widgets: %w", err)
		}
		widgetID, err := pick(cmd, filler, "Widget", widgetFlag, "widget", widgetOptions)
		if err != nil {
			return err
		}
		if err := gen.Handle(ctx, generator.WidgetSelected{WidgetID: widgetID}); err != nil {
			return err
		}

		skinOptions, err := pg.Options(sel.SkinSelect)
		if err != nil {
			return fmt.Errorf("list skins: %w", err)
		}
		skinID, err := pick(cmd, filler, "Skin", skinFlag, "skin", skinOptions)
		if err != nil {
			return err
		}
		if err := gen.Handle(ctx, generator.SkinSelected{SkinID: skinID}); err != nil {
			return err
		}

		if err := filler.Driver().Info(ctx, "Widget settings"); err != nil {
			return err
		}
		if err := filler.Fill(ctx, pg, sel.WidgetForm); err != nil {
			return err
		}
		if pg.Exists(sel.SkinForm) {
			if err := filler.Driver().Info(ctx, "Skin settings"); err != nil {
				return err
			}
			if err := filler.Fill(ctx, pg, sel.SkinForm); err != nil {
				return err
			}
		}

		outcome, err := gen.Do(ctx, generator.GenerateCode{Callback: func(res compiler.Result) {
			logger.Debug("widget code generated", zap.Int("length", len(res.Code)))
		}})
		if err != nil {
			return err
		}
		printCode(out, outcome.Code)

		if copyFlag || cfg.Copy {
			if err := clipboardWriteAll(outcome.Code); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), noticeStyle.Render("could not copy to clipboard: "+err.Error()))
			} else {
				fmt.Fprintln(out, "Copied to clipboard.")
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&widgetFlag, "widget", "", "widget id (prompted when empty)")
	generateCmd.Flags().StringVar(&skinFlag, "skin", "", "skin id (prompted when empty)")
	generateCmd.Flags().BoolVar(&copyFlag, "copy", false, "copy the generated code to the clipboard")
}

// pick resolves a flag value against the select options or prompts for one.
func pick(cmd *cobra.Command, filler *prompt.Filler, message, flagValue, kind string, options []page.SelectOption) (string, error) {
	if flagValue != "" {
		return matchOption(kind, flagValue, options)
	}
	value, err := filler.Choose(cmd.Context(), message, options)
	if errors.Is(err, prompt.ErrNoChoice) {
		return "", fmt.Errorf("no %s available", kind)
	}
	return value, err
}
