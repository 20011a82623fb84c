package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

func TestParseDefects(t *testing.T) {
	got, err := parseDefects([]string{"Одиночное включение:1.2", " Скопление : 2 ", "Тип: A:0.5"})
	if err != nil {
		t.Fatalf("parseDefects: %v", err)
	}
	want := []quality.Defect{
		{Type: "Одиночное включение", Size: "1.2"},
		{Type: "Скопление", Size: "2"},
		{Type: "Тип: A", Size: "0.5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defects mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseDefects([]string{"Трещина"}); err == nil {
		t.Fatalf("missing size should be rejected")
	}
}

func TestLoadForm(t *testing.T) {
	f, err := loadForm("")
	if err != nil || f.WeldConnectionNumber != "SS-01-001" {
		t.Fatalf("empty path should give the sample form, got %+v %v", f, err)
	}

	path := filepath.Join(t.TempDir(), "form.yaml")
	body := `customer: ООО "Ромашка"
weldConnectionNumber: "02/11"
controlMethod: Ультразвуковой
equipment:
  - "Дефектоскоп: УД2-70"
  - ""
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err = loadForm(path)
	if err != nil {
		t.Fatalf("loadForm: %v", err)
	}
	if f.Customer != `ООО "Ромашка"` || f.WeldConnectionNumber != "02/11" || f.ControlMethod != "Ультразвуковой" {
		t.Fatalf("unexpected form: %+v", f)
	}
	if diff := cmp.Diff([]string{"Дефектоскоп: УД2-70"}, f.CleanEquipment()); diff != "" {
		t.Fatalf("equipment mismatch (-want +got):\n%s", diff)
	}
}

func TestFormQuestionsCoverRequiredFields(t *testing.T) {
	var f techcard.FormData
	for _, q := range formQuestions(&f) {
		*q.value = "x"
	}
	f.ControlMethod = "Визуальный и измерительный"
	if err := f.Validate(); err != nil {
		t.Fatalf("every required field should be asked: %v", err)
	}
}

func TestTemplatesCommand(t *testing.T) {
	var out bytes.Buffer
	templatesCmd.SetOut(&out)
	if err := templatesCmd.RunE(templatesCmd, nil); err != nil {
		t.Fatalf("templates: %v", err)
	}
	for _, want := range []string{"gost_7512_radiographic", "ГОСТ 14782-86"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}
