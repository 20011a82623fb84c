package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

var techcardCmd = &cobra.Command{
	Use:   "techcard",
	Short: "Work with tech cards",
}

var techcardGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tech card and export it",
	Long: `Generate reads the form from --form (YAML, same keys as the web API) or
starts from the sample values, optionally lets you edit every field
interactively, asks the AI service for the four narrative sections and
writes TechCard_<weld number>.<format> into --out.`,
	RunE: runTechCardGenerate,
}

func init() {
	f := techcardGenerateCmd.Flags()
	f.String("form", "", "path to a YAML form file")
	f.BoolP("interactive", "i", false, "edit the form fields interactively")
	f.String("format", "pdf", "export format: pdf or docx")
	f.String("out", ".", "output directory")
	_ = viper.BindPFlag("techcard.format", f.Lookup("format"))
	_ = viper.BindPFlag("techcard.out", f.Lookup("out"))

	techcardCmd.AddCommand(techcardGenerateCmd)
	rootCmd.AddCommand(techcardCmd)
}

func runTechCardGenerate(cmd *cobra.Command, args []string) error {
	format, err := document.ParseFormat(viper.GetString("techcard.format"))
	if err != nil {
		return err
	}
	formPath, _ := cmd.Flags().GetString("form")
	form, err := loadForm(formPath)
	if err != nil {
		return err
	}
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if form, err = askForm(form); err != nil {
			return err
		}
	}
	if err := form.Validate(); err != nil {
		return err
	}
	form.Equipment = form.CleanEquipment()

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "Generating tech card content...")
	content, err := a.Services.Content.GenerateTechCardContent(ctx, form)
	if err != nil {
		return err
	}
	card := techcard.Merge(form, content)

	el, err := document.RenderTechCard(card)
	if err != nil {
		return err
	}
	dl := &document.DirDownloader{Dir: viper.GetString("techcard.out")}
	if err := a.Services.Documents.GenerateDocument(ctx, el, document.FileName(card), format, dl); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	for _, p := range dl.Saved {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// loadForm reads a YAML form. An empty path yields the sample form.
func loadForm(path string) (techcard.FormData, error) {
	if path == "" {
		return techcard.SampleForm(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return techcard.FormData{}, fmt.Errorf("read form: %w", err)
	}
	var form techcard.FormData
	if err := yaml.Unmarshal(raw, &form); err != nil {
		return techcard.FormData{}, fmt.Errorf("parse form %s: %w", path, err)
	}
	return form, nil
}

type formQuestion struct {
	label string
	value *string
}

func formQuestions(f *techcard.FormData) []formQuestion {
	return []formQuestion{
		{"Заказчик", &f.Customer},
		{"Объект", &f.Facility},
		{"Номер сварного соединения", &f.WeldConnectionNumber},
		{"Объект контроля", &f.ControlObject},
		{"Нормативный документ", &f.NormativeDocument},
		{"Тип сварного соединения", &f.WeldType},
		{"Толщина, мм", &f.Thickness},
		{"Диаметр, мм", &f.Diameter},
		{"Уровень качества", &f.QualityLevel},
		{"Чувствительность", &f.Sensitivity},
	}
}

func askForm(form techcard.FormData) (techcard.FormData, error) {
	for _, q := range formQuestions(&form) {
		prompt := &survey.Input{Message: q.label, Default: *q.value}
		if err := survey.AskOne(prompt, q.value, survey.WithValidator(survey.Required)); err != nil {
			return form, err
		}
	}

	method := &survey.Select{
		Message: "Метод контроля",
		Options: techcard.ControlMethods,
	}
	if slices.Contains(techcard.ControlMethods, form.ControlMethod) {
		method.Default = form.ControlMethod
	}
	if err := survey.AskOne(method, &form.ControlMethod); err != nil {
		return form, err
	}

	var equipment string
	prompt := &survey.Multiline{
		Message: "Оборудование (по одному на строку)",
		Default: strings.Join(form.Equipment, "\n"),
	}
	if err := survey.AskOne(prompt, &equipment); err != nil {
		return form, err
	}
	form.Equipment = strings.Split(equipment, "\n")
	return form, nil
}
