// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
)

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":     timeFormat,
		"localizedTime":  p.localizedTime,
		"floatFormat":    floatFormat,
		"loc":            p.loc,
		"lc":             strings.ToLower,
		"uc":             strings.ToUpper,
		"emojiWithSpace": EmojiWithSpace,
		"forecast":       forecast,
	}
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[strings.ToLower(val)]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// EmojiWithSpace pads an emoji so that text following it lines up in terminals that
// render the emoji two cells wide.
func EmojiWithSpace(emoji string) string {
	width := runewidth.StringWidth(emoji)
	if width < 2 {
		return emoji + strings.Repeat(" ", 3-width)
	}
	return emoji + " "
}

// Compass maps a wind direction in degrees to one of eight compass points.
func Compass(degrees float64) string {
	normalized := math.Mod(math.Mod(degrees, 360)+360, 360)
	return compassPoints[int((normalized+22.5)/45)%len(compassPoints)]
}

// forecast returns the forecast at the given offset (0-based).
func forecast(ctx TemplateContext, offset int) WeatherView {
	if offset < 0 || offset >= len(ctx.Forecast) {
		return WeatherView{}
	}
	return ctx.Forecast[offset]
}
