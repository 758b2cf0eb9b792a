package control

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/stats"
)

type multiError struct {
	errs []error
}

func (m *multiError) appendf(format string, args ...any) {
	m.errs = append(m.errs, fmt.Errorf(format, args...))
}

func (m *multiError) Error() string {
	lines := make([]string, 0, len(m.errs))
	for _, err := range m.errs {
		lines = append(lines, "- "+err.Error())
	}

	return "invalid control file:\n" + strings.Join(lines, "\n")
}

func (m *multiError) ErrorOrNil() error {
	if len(m.errs) == 0 {
		return nil
	}

	return m
}

// Validate checks the schema constraints and the cross-section references of
// the control file. All problems are reported at once.
func (c *Config) Validate() error {
	result := &multiError{}

	err := validateStruct(c)
	var structErrs *multiError
	switch {
	case err == nil:
	case errors.As(err, &structErrs):
		result.errs = append(result.errs, structErrs.errs...)
	default:
		return err
	}

	c.checkSemantics(result)

	return result.ErrorOrNil()
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()

	enLocale := en.New()
	translator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	err := enTranslation.RegisterDefaultTranslations(validate, translator)
	if err != nil {
		panic(errors.Wrap(err, "translator was not registered"))
	}

	// Use YAML key names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return validate, translator
}

func validateStruct(value any) error {
	validate, translator := newValidator()

	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	result := &multiError{}
	for _, fieldErr := range validationErrs {
		namespace := strings.TrimPrefix(fieldErr.Namespace(), "Config.")
		result.appendf("%s %s", namespace, fieldErr.Translate(translator))
	}

	return result.ErrorOrNil()
}

func (c *Config) checkSemantics(result *multiError) {
	start, end := c.Analysis.StartTime, c.Analysis.EndTime
	switch {
	case start.IsZero():
		result.appendf("analysis.start_time is required")
	case end.IsZero():
		result.appendf("analysis.end_time is required")
	case !end.After(start.Time):
		result.appendf("analysis.end_time %s must be after analysis.start_time %s",
			end.Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04"))
	}

	for modLabel, mod := range c.Models {
		if mod == nil {
			continue
		}
		for obsLabel := range mod.Mapping {
			if _, ok := c.Obs[obsLabel]; !ok {
				result.appendf("model.%s.mapping references undeclared obs %q", modLabel, obsLabel)
			}
		}
	}

	declared := make(map[string]struct{})
	for _, label := range c.PairLabels() {
		declared[label] = struct{}{}
	}

	for grpName, grp := range c.Plots {
		if grp == nil {
			continue
		}
		if len(grp.DomainType) != len(grp.DomainName) {
			result.appendf("plots.%s: domain_type and domain_name must have the same length", grpName)
		}
		for _, label := range grp.Data {
			if _, ok := declared[label]; !ok {
				result.appendf("plots.%s.data references unknown pair %q", grpName, label)
			}
		}
	}

	if c.Stats != nil {
		if len(c.Stats.DomainType) != len(c.Stats.DomainName) {
			result.appendf("stats: domain_type and domain_name must have the same length")
		}
		for _, label := range c.Stats.Data {
			if _, ok := declared[label]; !ok {
				result.appendf("stats.data references unknown pair %q", label)
			}
		}
		for _, name := range c.Stats.StatList {
			if !stats.Known(name) {
				result.appendf("stats.stat_list contains unknown statistic %q", name)
			}
		}
	}
}
