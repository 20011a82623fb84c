package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess weld quality from a list of defects",
	Example: `  ndtctl assess --method Радиографический --doc "ГОСТ 7512" --thickness 3.6 \
    --defect "Одиночное включение:1.2" --defect "Скопление:2"`,
	RunE: runAssess,
}

func init() {
	def := quality.DefaultForm()
	f := assessCmd.Flags()
	f.String("method", def.Method, "control method")
	f.String("doc", def.NormativeDocument, "normative document")
	f.String("thickness", def.Thickness, "wall thickness, mm")
	f.StringArray("defect", nil, `defect as "type:size", repeatable`)

	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	doc, _ := cmd.Flags().GetString("doc")
	thickness, _ := cmd.Flags().GetString("thickness")
	raw, _ := cmd.Flags().GetStringArray("defect")

	defects, err := parseDefects(raw)
	if err != nil {
		return err
	}
	form := quality.Form{
		Method:            method,
		NormativeDocument: doc,
		Thickness:         thickness,
		Defects:           quality.Normalize(defects),
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Services.Quality.AssessQuality(ctx, form.Request())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// parseDefects splits each "type:size" on the last colon, so types may
// themselves contain colons.
func parseDefects(raw []string) ([]quality.Defect, error) {
	out := make([]quality.Defect, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, ":")
		if i < 0 {
			return nil, fmt.Errorf("defect %q: want type:size", r)
		}
		out = append(out, quality.Defect{
			Type: strings.TrimSpace(r[:i]),
			Size: strings.TrimSpace(r[i+1:]),
		})
	}
	return out, nil
}
