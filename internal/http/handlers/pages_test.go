package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/ndtmaster-backend/internal/document"
	"github.com/yungbote/ndtmaster-backend/internal/domain/quality"
	"github.com/yungbote/ndtmaster-backend/internal/domain/techcard"
)

func TestHomePage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	mustContain(t, rec.Body.String(),
		"NDT Master",
		"Ключевые возможности",
		"Генерация техкарт",
		`href="/techcards/new"`,
		"Все права защищены.",
	)
}

func TestTechCardFormDefaultsAndTemplate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/techcards/new", "", nil)
	mustContain(t, rec.Body.String(), "Создание технологической карты", `value="SS-01-001"`, "Оборудование 3", "Сгенерировать техкарту")

	rec = env.do(t, http.MethodGet, "/techcards/new?template=gost_14782_ultrasonic", "", nil)
	mustContain(t, rec.Body.String(), `value="ГОСТ 14782-86"`, "<option selected>Ультразвуковой</option>", `value="Уровень А"`)
}

func TestTechCardFormEquipmentActions(t *testing.T) {
	env := newTestEnv(t)

	form := formValues(techcard.SampleForm())
	form.Set("action", "add_equipment")
	rec := env.postForm(t, "/techcards/new", form)
	mustContain(t, rec.Body.String(), "Оборудование 4")

	form = formValues(techcard.SampleForm())
	form.Set("action", "remove_equipment:0")
	body := env.postForm(t, "/techcards/new", form).Body.String()
	if strings.Contains(body, "РПД-250") || strings.Contains(body, "Оборудование 3") {
		t.Fatalf("first equipment row should be removed")
	}
	if env.content.calls != 0 {
		t.Fatalf("editing actions must not call the AI service")
	}
}

func TestTechCardFormValidation(t *testing.T) {
	env := newTestEnv(t)
	f := techcard.SampleForm()
	f.Facility = ""
	form := formValues(f)
	form.Set("action", "generate")

	rec := env.postForm(t, "/techcards/new", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	mustContain(t, rec.Body.String(), "Заполните обязательные поля: Объект", `class="field-error"`)
	if env.content.calls != 0 {
		t.Fatalf("AI service must not be called on invalid input")
	}
}

var draftPath = regexp.MustCompile(`^/techcards/[0-9a-f-]{36}$`)

func generateViaForm(t *testing.T, env *testEnv) string {
	t.Helper()
	form := formValues(techcard.SampleForm())
	form.Add("equipment", "  ")
	form.Set("action", "generate")

	rec := env.postForm(t, "/techcards/new", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: want=%d got=%d (%s)", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !draftPath.MatchString(loc) {
		t.Fatalf("unexpected redirect: %q", loc)
	}
	return loc
}

func TestGenerateRedirectsToPreview(t *testing.T) {
	env := newTestEnv(t)
	loc := generateViaForm(t, env)

	rec := env.do(t, http.MethodGet, loc, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: want=%d got=%d", http.StatusOK, rec.Code)
	}
	mustContain(t, rec.Body.String(),
		"Предпросмотр техкарты: SS-01-001",
		`href="`+loc+`/download?format=docx"`,
		`href="`+loc+`/download?format=pdf"`,
		"Скачать DOCX",
		"Скачать PDF",
	)

	rec = env.do(t, http.MethodGet, loc+"/card", "", nil)
	mustContain(t, rec.Body.String(), `id="tech-card"`, "1. Подготовка.")
	if strings.Contains(rec.Body.String(), ", </td>") {
		t.Fatalf("blank equipment rows should be dropped")
	}
}

func TestGenerateAIFailureKeepsForm(t *testing.T) {
	env := newTestEnv(t)
	env.content.err = errProvider

	form := formValues(techcard.SampleForm())
	form.Set("action", "generate")
	rec := env.postForm(t, "/techcards/new", form)
	if rec.Code == http.StatusSeeOther {
		t.Fatalf("failed generation must not redirect")
	}
	mustContain(t, rec.Body.String(), `value="SS-01-001"`, `class="error"`)
}

func TestPreviewUnknownDraftRedirects(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/techcards/00000000-0000-0000-0000-000000000000", "", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/techcards/new" {
		t.Fatalf("want redirect to form, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDownloadFromPreview(t *testing.T) {
	env := newTestEnv(t, withPDFError(document.ErrPDFUnavailable))
	loc := generateViaForm(t, env)

	rec := env.do(t, http.MethodGet, loc+"/download?format=docx", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "file:docx" {
		t.Fatalf("docx download: %d %q", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Fatalf("missing attachment header")
	}

	rec = env.do(t, http.MethodGet, loc+"/download?format=pdf", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
	mustContain(t, rec.Body.String(), "Не удалось скачать pdf файл.", "Предпросмотр техкарты: SS-01-001")
}

func TestSaveDraftFromPreview(t *testing.T) {
	env := newTestEnv(t)
	loc := generateViaForm(t, env)

	rec := env.postForm(t, loc+"/save", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	mustContain(t, rec.Body.String(), "Техкарта сохранена (ID: doc_")
}

func qualityValues(action string) url.Values {
	v := url.Values{}
	v.Set("method", "Радиографический")
	v.Set("normativeDocument", "ГОСТ 7512")
	v.Set("thickness", "3.6")
	v.Add("defect_id", "a")
	v.Add("defect_type", "Трещина")
	v.Add("defect_size", "0.5")
	v.Add("defect_id", "b")
	v.Add("defect_type", "")
	v.Add("defect_size", "")
	v.Set("action", action)
	return v
}

func TestQualityPageDefaults(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/quality", "", nil)
	mustContain(t, rec.Body.String(),
		"Оценка качества сварного соединения",
		"<option selected>Радиографический</option>",
		"<option selected>ГОСТ 7512</option>",
		`value="3.6"`,
		"<option selected>Одиночное включение</option>",
		`value="1.2"`,
		"-- Выберите тип --",
	)
}

func TestQualityPageActions(t *testing.T) {
	env := newTestEnv(t)

	body := env.postForm(t, "/quality", qualityValues("add")).Body.String()
	if got := strings.Count(body, `name="defect_id"`); got != 3 {
		t.Fatalf("rows after add: want=3 got=%d", got)
	}

	body = env.postForm(t, "/quality", qualityValues("remove:a")).Body.String()
	if got := strings.Count(body, `name="defect_id"`); got != 1 || strings.Contains(body, `value="a"`) {
		t.Fatalf("row a should be removed")
	}

	rec := env.postForm(t, "/quality", qualityValues("assess"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	mustContain(t, rec.Body.String(), "Результат оценки", "Заключение: годен.")
	req := env.quality.got[len(env.quality.got)-1]
	if len(req.Defects) != 1 || req.Defects[0].Type != "Трещина" || req.Thickness != "3.6" {
		t.Fatalf("unexpected request: %+v", req)
	}

	v := qualityValues("assess")
	v.Set("defect_size", "")
	rec = env.postForm(t, "/quality", v)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, rec.Code)
	}
	mustContain(t, rec.Body.String(), "Пожалуйста, добавьте хотя бы один дефект с типом и размером.")
}

func TestQualityPageKeepsCellsOfRepeatedIDs(t *testing.T) {
	env := newTestEnv(t)
	v := qualityValues("assess")
	v["defect_id"] = []string{"a", "a"}
	v["defect_type"] = []string{"Трещина", "Непровар"}
	v["defect_size"] = []string{"0.5", "2"}

	rec := env.postForm(t, "/quality", v)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	req := env.quality.got[len(env.quality.got)-1]
	want := []quality.Entry{{Type: "Трещина", Size: "0.5"}, {Type: "Непровар", Size: "2"}}
	if diff := cmp.Diff(want, req.Defects); diff != "" {
		t.Fatalf("defects mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(rec.Body.String(), `value="a"`); got != 1 {
		t.Fatalf("repeated id should be replaced, found %d rows with id a", got)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/dashboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, rec.Code)
	}
	mustContain(t, rec.Body.String(),
		"ТК № 02/11-РГК",
		"Создано: 21.01.2024",
		"Вам доступно: 3 разработки",
		"разработки техкарт.",
		"Популярный",
		"800₽",
		"1500₽",
	)
}

func TestDisplayDate(t *testing.T) {
	if got := displayDate("2024-01-15"); got != "15.01.2024" {
		t.Fatalf("want=%q got=%q", "15.01.2024", got)
	}
	if got := displayDate("вчера"); got != "вчера" {
		t.Fatalf("want=%q got=%q", "вчера", got)
	}
}
