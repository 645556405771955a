package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberGenerator produces human-readable settlement identifiers:
// DAILY-YYYYMMDD-XXXXXXXX, WEEKLY-YYYYWww-XXXXXXXX, MONTHLY-YYYYMM-XXXXXXXX,
// YEARLY-YYYY-XXXXXXXX. The suffix is random and only probabilistically
// unique; the storage unique constraint is the real guard. Consumers must
// group on the prefix/period portion only.
type NumberGenerator struct{}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{}
}

func (g *NumberGenerator) Daily(date time.Time) string {
	return fmt.Sprintf("DAILY-%s-%s", date.Format("20060102"), g.suffix())
}

func (g *NumberGenerator) Weekly(weekStart time.Time) string {
	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("WEEKLY-%dW%02d-%s", year, week, g.suffix())
}

func (g *NumberGenerator) Monthly(year int, month time.Month) string {
	return fmt.Sprintf("MONTHLY-%d%02d-%s", year, int(month), g.suffix())
}

func (g *NumberGenerator) Yearly(year int) string {
	return fmt.Sprintf("YEARLY-%d-%s", year, g.suffix())
}

// suffix is an 8-character uppercase random token.
func (g *NumberGenerator) suffix() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:8])
}
