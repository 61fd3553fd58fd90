// Package cmd implements the command-line interface for lingoreel.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/inline"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("lessons", "l", "", "Criteria for selecting lessons from the catalog")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("include-captions", "C", false, "Include full caption tracks in the structured output")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Initialize the application for automated execution and data extraction using inline mode.

Lesson selectors:
  first - first lesson in the catalog
  last - last lesson in the catalog
  all - all lessons in the catalog
  [number] - select a lesson by id
  [from]-[to] - select lessons by id range
  @[substring]@ - select lessons by highlight phrase substring

When the lessons selector is omitted, all lessons are selected.`,
	Example: "  lingoreel inline --lessons 1-5 --json",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			writer io.Writer = os.Stdout
			err    error
		)

		output := lo.Must(cmd.Flags().GetString("output"))
		if output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		}

		filterFlag := lo.Must(cmd.Flags().GetString("lessons"))
		filter := mo.None[inline.LessonFilter]()
		if filterFlag != "" {
			fn, err := inline.ParseLessonFilter(filterFlag)
			handleErr(err)
			filter = mo.Some(fn)
		}

		options := &inline.Options{
			Out:             writer,
			Service:         lesson.NewHTTPContentService(),
			Language:        viper.GetString(key.ContentLanguage),
			Json:            lo.Must(cmd.Flags().GetBool("json")),
			IncludeCaptions: lo.Must(cmd.Flags().GetBool("include-captions")),
			LessonFilter:    filter,
		}

		handleErr(inline.Run(cmd.Context(), options))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates the JSON schema for structured inline mode output.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "lesson", "caption", "entry", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&inline.Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
