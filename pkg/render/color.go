package render

import (
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
)

// Color is a CSS color: a hex triplet, a named color, or an rgb()/hsl()
// functional form.
type Color string

var (
	hexColor        = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	namedColor      = regexp.MustCompile(`^[a-zA-Z]+$`)
	functionalColor = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\([0-9.,%\s]*\)$`)
)

// Validate reports whether c can be embedded in a fill attribute.
func (c Color) Validate() error {
	s := string(c)
	switch {
	case s == "":
		return errors.New(errors.ErrCodeInvalidColor, "color is empty")
	case strings.HasPrefix(s, "#"):
		if !hexColor.MatchString(s) {
			return errors.New(errors.ErrCodeInvalidColor, "invalid hex color %q", s)
		}
		if _, err := colorful.Hex(s); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid hex color %q", s)
		}
		return nil
	case namedColor.MatchString(s), functionalColor.MatchString(s):
		return nil
	}
	return errors.New(errors.ErrCodeInvalidColor, "unrecognized color %q", s)
}

func validateColors(cs []Color) error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "fill for record %d", i)
		}
	}
	return nil
}

// Gradient maps the accessor value of each record onto a Lab-space blend
// between from (at lo) and to (at hi). Values outside [lo, hi] clamp to the
// end colors. A record the accessor cannot read gets an empty color, which
// [View.Update] rejects.
func Gradient(acc data.Accessor, lo, hi float64, from, to Color) (ColorAssignment, error) {
	c0, err := colorful.Hex(string(from))
	if err != nil {
		return ColorAssignment{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "gradient start %q", from)
	}
	c1, err := colorful.Hex(string(to))
	if err != nil {
		return ColorAssignment{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "gradient end %q", to)
	}
	if acc == nil {
		return ColorAssignment{}, errors.New(errors.ErrCodeInvalidAccessor, "gradient accessor is nil")
	}
	return Mapper(func(r data.Record) Color {
		v, err := acc(r)
		if err != nil {
			return ""
		}
		t := 0.5
		if hi != lo {
			t = math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
		}
		return Color(c0.BlendLab(c1, t).Clamped().Hex())
	}), nil
}
