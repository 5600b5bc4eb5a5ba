package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/beauty-center-booking/internal/model"
)

// RequiredColumns is the column set every sheet must provide.  Sheets
// missing any of them are rejected whole, before row processing.
var RequiredColumns = []string{"name", "description", "duration_minutes", "price", "state"}

// User-facing rejection reasons.  The review surface and the staged
// error rows show these verbatim, so they stay in the operators'
// language.
const (
	msgEmptyName       = "Nombre vacío"
	msgBadDuration     = "Duración inválida"
	msgNegativePrice   = "Precio negativo"
	msgBadPrice        = "Precio inválido"
	msgBadState        = "Estado inválido"
	msgEmptyNameUpdate = "El nombre no puede estar vacío"
	msgLowDuration     = "La duración debe ser mayor a 0"
	msgNegPriceUpdate  = "El precio no puede ser negativo"
)

// RowError is a validation failure for one row, carrying the reason
// that gets persisted as a staging error.
type RowError struct {
	Reason string
}

func (e *RowError) Error() string { return e.Reason }

// MissingColumns returns the required columns absent from the sheet's
// header, sorted for stable error messages.  An empty result means the
// sheet structure is acceptable.
func MissingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.TrimSpace(c)] = true
	}
	missing := []string{}
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// SheetStructureMessage formats the sheet-level rejection for a sheet
// whose header lacks required columns.
func SheetStructureMessage(missing []string) string {
	return fmt.Sprintf("Estructura inválida: faltan columnas %s", strings.Join(missing, ", "))
}

// ValidateRow normalizes one raw row into a staged record or rejects it
// with a *RowError.  Rules, in order:
//
//  1. name trimmed and non-empty
//  2. duration_minutes an integer > 0
//  3. price a decimal >= 0
//  4. state a boolean: numeric strings by integer truth value, common
//     boolean words otherwise
//
// The description is trimmed; a blank cell becomes nil and is stored
// as NULL.
func ValidateRow(row RawRow) (model.StagedRow, error) {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return model.StagedRow{}, &RowError{Reason: msgEmptyName}
	}

	duration, err := parseDuration(row["duration_minutes"])
	if err != nil {
		return model.StagedRow{}, err
	}
	price, err := parsePrice(row["price"])
	if err != nil {
		return model.StagedRow{}, err
	}
	state, err := parseState(row["state"])
	if err != nil {
		return model.StagedRow{}, err
	}

	out := model.StagedRow{
		Name:            name,
		DurationMinutes: duration,
		Price:           price,
		State:           state,
	}
	if desc := strings.TrimSpace(row["description"]); desc != "" {
		out.Description = &desc
	}
	return out, nil
}

// ValidatePatch coerces the JSON body of a staged-row update into a
// typed patch.  Keys outside the closed field set are rejected
// atomically, naming the offenders; each supplied field passes the
// same rules as ValidateRow, with the first failure winning.
func ValidatePatch(updates map[string]any) (model.StagedRowPatch, error) {
	allowed := map[string]bool{
		"name": true, "description": true, "duration_minutes": true,
		"price": true, "state": true,
	}
	invalid := []string{}
	for k := range updates {
		if !allowed[k] {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return model.StagedRowPatch{}, &RowError{
			Reason: fmt.Sprintf("Campos no permitidos: %s", strings.Join(invalid, ", ")),
		}
	}

	var p model.StagedRowPatch
	if v, ok := updates["name"]; ok {
		name := strings.TrimSpace(stringify(v))
		if name == "" {
			return model.StagedRowPatch{}, &RowError{Reason: msgEmptyNameUpdate}
		}
		p.Name = &name
	}
	if v, ok := updates["duration_minutes"]; ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(stringify(v)))
		if convErr != nil {
			return model.StagedRowPatch{}, &RowError{Reason: msgBadDuration}
		}
		if n <= 0 {
			return model.StagedRowPatch{}, &RowError{Reason: msgLowDuration}
		}
		p.DurationMinutes = &n
	}
	if v, ok := updates["price"]; ok {
		price, err := parsePrice(stringify(v))
		if err != nil {
			if rowErr, ok := err.(*RowError); ok && rowErr.Reason == msgNegativePrice {
				return model.StagedRowPatch{}, &RowError{Reason: msgNegPriceUpdate}
			}
			return model.StagedRowPatch{}, &RowError{Reason: msgBadPrice}
		}
		p.Price = &price
	}
	if v, ok := updates["state"]; ok {
		state, err := parseState(stringify(v))
		if err != nil {
			return model.StagedRowPatch{}, &RowError{Reason: msgBadState}
		}
		p.State = &state
	}
	if v, ok := updates["description"]; ok {
		desc := strings.TrimSpace(stringify(v))
		p.Description = &desc // empty string persists as NULL
	}
	return p, nil
}

// parseDuration accepts integers only; spreadsheet cells sometimes
// carry "30.0", which is rejected as invalid rather than rounded.
func parseDuration(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &RowError{Reason: msgBadDuration}
	}
	return n, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &RowError{Reason: msgBadPrice}
	}
	if d.Sign() < 0 {
		return decimal.Zero, &RowError{Reason: msgNegativePrice}
	}
	return d, nil
}

// parseState turns a raw cell into a boolean.  A purely numeric string
// is treated as an integer truth value; otherwise a small set of
// boolean words is accepted in either language of the data files.
func parseState(raw string) (bool, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0, nil
	}
	switch strings.ToLower(s) {
	case "true", "yes", "si", "sí", "activo":
		return true, nil
	case "false", "no", "inactivo":
		return false, nil
	}
	return false, &RowError{Reason: fmt.Sprintf("Error inesperado: estado no reconocido %q", s)}
}

// stringify renders a decoded JSON value the way a spreadsheet cell
// would look, so patch validation can reuse the cell parsers.  JSON
// numbers arrive as float64; integral ones print without a decimal
// point.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
