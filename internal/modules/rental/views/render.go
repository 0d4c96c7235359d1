package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/url"

	"bikerental-server/internal/modules/rental/types"
)

//go:embed templates
var viewsFS embed.FS

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Field is one form input with the value to pre-fill.
type Field struct {
	Name  string
	Label string
	Hint  string
	// Type is the HTML input type; Step applies to number inputs.
	Type  string
	Step  string
	Value string
}

type fieldSpec struct {
	name, label, hint, typ, step string
}

var formFields = []fieldSpec{
	{"season", "Season", "1 spring, 2 summer, 3 fall, 4 winter", "number", "1"},
	{"yr", "Year", "0 first year, 1 second year", "number", "1"},
	{"mnth", "Month", "1-12", "number", "1"},
	{"day", "Day of month", "1-31", "number", "1"},
	{"hr", "Hour", "0-23", "number", "1"},
	{"weekday", "Weekday", "0 Sunday - 6 Saturday", "number", "1"},
	{"weathersit", "Weather", "1 clear, 2 mist, 3 light rain/snow, 4 heavy rain", "number", "1"},
	{"holiday", "Holiday", "yes / no", "text", ""},
	{"workingday", "Working day", "yes / no", "text", ""},
	{"temp_c", "Temperature (°C)", "", "number", "any"},
	{"hum_percent", "Humidity (%)", "0-100", "number", "any"},
	{"windspeed", "Wind speed", "", "number", "any"},
}

// PageData is the view model for the prediction page.
type PageData struct {
	Fields        []Field
	HasPrediction bool
	Prediction    float64
	Error         string
	ModelName     string
	ModelVersion  string
}

// NewPageData echoes the submitted values into the form and copies the outcome.
// A nil outcome renders an empty result area.
func NewPageData(form url.Values, out *types.Outcome) *PageData {
	data := &PageData{Fields: make([]Field, 0, len(formFields))}
	for _, f := range formFields {
		data.Fields = append(data.Fields, Field{
			Name:  f.name,
			Label: f.label,
			Hint:  f.hint,
			Type:  f.typ,
			Step:  f.step,
			Value: form.Get(f.name),
		})
	}
	if out == nil {
		return data
	}
	if out.Err != nil {
		data.Error = out.Err.Error()
		return data
	}
	if out.Prediction != nil {
		data.HasPrediction = true
		data.Prediction = *out.Prediction
	}
	return data
}

func RenderPage(w io.Writer, data *PageData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderResultPartial executes only the result partial into w.
// Use for HTMX fragment refresh.
func RenderResultPartial(w io.Writer, data *PageData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "partials/result.html", data)
}
