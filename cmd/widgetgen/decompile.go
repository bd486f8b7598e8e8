package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetgen/pkg/generator"
	"github.com/goliatone/go-widgetgen/pkg/page"
	"github.com/goliatone/go-widgetgen/pkg/payload"
)

var codeFlag string

var decompileCmd = &cobra.Command{
	Use:   "decompile",
	Short: "Expand widget code back into the widget, skin and field values it encodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		code := codeFlag
		if code == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read code from stdin: %w", err)
			}
			code = string(data)
		}
		code = strings.TrimSpace(code)

		gen, err := openSession(ctx, cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := gen.SetCode(code); err != nil {
			return fmt.Errorf("set code: %w", err)
		}
		if err := gen.Handle(ctx, generator.SetupClicked{}); err != nil {
			return err
		}

		sel := gen.Selectors()
		current := gen.Selection()
		printSection(out, "Widget")
		printField(out, "widget", current.WidgetID)
		printField(out, "skin", current.SkinID)
		if err := printForm(out, gen.Page(), sel.WidgetForm, "widget", "skin_id"); err != nil {
			return err
		}
		if gen.Page().Exists(sel.SkinForm) {
			printSection(out, "Skin")
			if err := printForm(out, gen.Page(), sel.SkinForm); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	decompileCmd.Flags().StringVar(&codeFlag, "code", "", `widget code to decompile ("-" reads stdin)`)
	_ = decompileCmd.MarkFlagRequired("code")
}

func printForm(w io.Writer, pg *page.Page, selector string, skip ...string) error {
	form, err := pg.Form(selector)
	if err != nil {
		return fmt.Errorf("read %s: %w", selector, err)
	}
	printFields(w, form.Fields, skip)
	return nil
}

func printFields(w io.Writer, fields payload.Payload, skip []string) {
	for _, field := range fields {
		if slices.Contains(skip, field.Name) {
			continue
		}
		value, ok := field.String()
		if !ok {
			continue
		}
		printField(w, field.Name, value)
	}
}
