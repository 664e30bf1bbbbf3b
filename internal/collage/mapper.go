package collage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jfmyers9/collagefm/pkg/lastfm"
)

// Option names, used in errors and as persisted option keys.
const (
	OptionPeriod    = "period"
	OptionDimension = "dimension"
	OptionImageSize = "image-size"
)

// Entry maps one friendly label to its API token.
type Entry struct {
	Label string
	Token string
}

// Table is an ordered label→token mapping. The first entry is the default.
type Table []Entry

// Labels returns the table's labels in order.
func (t Table) Labels() []string {
	labels := make([]string, len(t))
	for i, e := range t {
		labels[i] = e.Label
	}
	return labels
}

// Lookup returns the token for label.
func (t Table) Lookup(label string) (string, bool) {
	for _, e := range t {
		if e.Label == label {
			return e.Token, true
		}
	}
	return "", false
}

// Default returns the first label of the table.
func (t Table) Default() string {
	if len(t) == 0 {
		return ""
	}
	return t[0].Label
}

// Tables holds the three option tables. It is built once and never
// mutated afterwards.
type Tables struct {
	Period    Table
	Dimension Table
	ImageSize Table
}

// DefaultTables returns the stock option tables.
func DefaultTables() *Tables {
	return &Tables{
		Period: Table{
			{Label: "Week", Token: lastfm.Period7Day},
			{Label: "1 Month", Token: lastfm.Period1Month},
			{Label: "3 Months", Token: lastfm.Period3Month},
			{Label: "6 Months", Token: lastfm.Period6Month},
			{Label: "1 Year", Token: lastfm.Period12Month},
		},
		Dimension: Table{
			{Label: "3x3", Token: "9"},
			{Label: "5x5", Token: "25"},
			{Label: "10x10", Token: "100"},
		},
		ImageSize: Table{
			{Label: "Small", Token: lastfm.ImageSmall},
			{Label: "Medium", Token: lastfm.ImageMedium},
			{Label: "Large", Token: lastfm.ImageLarge},
			{Label: "Extra large", Token: lastfm.ImageExtraLarge},
		},
	}
}

// Request is a collage request expressed in friendly labels.
type Request struct {
	Username  string
	Period    string // Label from Tables.Period
	Dimension string // Label from Tables.Dimension
	ImageSize string // Label from Tables.ImageSize
}

// Params is a Request translated to API tokens.
type Params struct {
	Username  string
	Period    string // API period token
	Limit     int    // Number of albums requested
	GridDim   int    // floor(sqrt(Limit))
	ImageSize string // API image size token
}

// Mapper translates friendly labels into API parameters.
type Mapper struct {
	tables *Tables
}

// NewMapper creates a Mapper over tables.
func NewMapper(tables *Tables) *Mapper {
	return &Mapper{tables: tables}
}

// Tables returns the tables the mapper was built with.
func (m *Mapper) Tables() *Tables {
	return m.tables
}

// Map translates req into API parameters.
//
// Fails with ErrUnknownOption for any label outside its table, and for
// dimension tokens that are not a positive integer. A blank username
// fails with ErrInvalidUser without reaching the API.
func (m *Mapper) Map(req Request) (Params, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Params{}, &Error{Kind: KindInvalidUser, Username: req.Username}
	}

	period, ok := m.tables.Period.Lookup(req.Period)
	if !ok {
		return Params{}, unknownOption(OptionPeriod, req.Period)
	}

	limitToken, ok := m.tables.Dimension.Lookup(req.Dimension)
	if !ok {
		return Params{}, unknownOption(OptionDimension, req.Dimension)
	}
	limit, err := strconv.Atoi(limitToken)
	if err != nil || limit <= 0 {
		return Params{}, &Error{
			Kind:   KindUnknownOption,
			Option: OptionDimension,
			Label:  req.Dimension,
			Err:    fmt.Errorf("invalid limit token %q", limitToken),
		}
	}

	size, ok := m.tables.ImageSize.Lookup(req.ImageSize)
	if !ok {
		return Params{}, unknownOption(OptionImageSize, req.ImageSize)
	}

	return Params{
		Username:  username,
		Period:    period,
		Limit:     limit,
		GridDim:   GridDim(limit),
		ImageSize: size,
	}, nil
}

// GridDim returns the side of the square grid for limit albums,
// floor(sqrt(limit)). When limit is not a perfect square, albums past
// GridDim² have no cell and are dropped by Compose.
func GridDim(limit int) int {
	if limit <= 0 {
		return 0
	}
	dim := int(math.Sqrt(float64(limit)))
	// Guard against float rounding on large inputs
	for dim*dim > limit {
		dim--
	}
	for (dim+1)*(dim+1) <= limit {
		dim++
	}
	return dim
}

func unknownOption(option, label string) error {
	return &Error{Kind: KindUnknownOption, Option: option, Label: label}
}
