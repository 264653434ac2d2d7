package particles

import (
	"bytes"
	"encoding/json"
	"sort"
)

// RuleMatrix maps an ordered pair of group labels to an interaction
// coefficient g. A particle a of group from gets g*(a-b)/|a-b| added to its
// force for every particle b of group to within range, so a negative g draws
// the two together.
//
// Rows and the columns inside each row keep the order in which they were
// first set, so the JSON form round-trips exactly.
type RuleMatrix struct {
	order []string
	rows  map[string]*ruleRow
}

type ruleRow struct {
	order []string
	coeff map[string]float64
}

// NewRuleMatrix returns an empty matrix.
func NewRuleMatrix() RuleMatrix {
	return RuleMatrix{rows: make(map[string]*ruleRow)}
}

// RulesFromMap builds a matrix from a plain nested map. Labels are sorted
// since map iteration order carries no meaning.
func RulesFromMap(m map[string]map[string]float64) RuleMatrix {
	rm := NewRuleMatrix()
	from := make([]string, 0, len(m))
	for k := range m {
		from = append(from, k)
	}
	sort.Strings(from)
	for _, f := range from {
		to := make([]string, 0, len(m[f]))
		for k := range m[f] {
			to = append(to, k)
		}
		sort.Strings(to)
		rm.touchRow(f)
		for _, t := range to {
			rm.Set(f, t, m[f][t])
		}
	}
	return rm
}

func (rm *RuleMatrix) touchRow(from string) *ruleRow {
	if rm.rows == nil {
		rm.rows = make(map[string]*ruleRow)
	}
	row, ok := rm.rows[from]
	if !ok {
		row = &ruleRow{coeff: make(map[string]float64)}
		rm.rows[from] = row
		rm.order = append(rm.order, from)
	}
	return row
}

// Set stores the coefficient applied to a particle of group from when it
// interacts with a particle of group to.
func (rm *RuleMatrix) Set(from, to string, g float64) {
	row := rm.touchRow(from)
	if _, ok := row.coeff[to]; !ok {
		row.order = append(row.order, to)
	}
	row.coeff[to] = g
}

// Get returns the coefficient for (from, to) and whether it exists.
func (rm RuleMatrix) Get(from, to string) (float64, bool) {
	row, ok := rm.rows[from]
	if !ok {
		return 0, false
	}
	g, ok := row.coeff[to]
	return g, ok
}

// Labels returns the row labels in order.
func (rm RuleMatrix) Labels() []string {
	return append([]string(nil), rm.order...)
}

// Columns returns the column labels of one row in order.
func (rm RuleMatrix) Columns(from string) []string {
	row, ok := rm.rows[from]
	if !ok {
		return nil
	}
	return append([]string(nil), row.order...)
}

// Len is the number of rows.
func (rm RuleMatrix) Len() int {
	return len(rm.order)
}

// Clone returns a deep copy that shares nothing with rm.
func (rm RuleMatrix) Clone() RuleMatrix {
	out := NewRuleMatrix()
	for _, f := range rm.order {
		row := rm.rows[f]
		out.touchRow(f)
		for _, t := range row.order {
			out.Set(f, t, row.coeff[t])
		}
	}
	return out
}

// Map flattens the matrix into a nested map, dropping order.
func (rm RuleMatrix) Map() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(rm.order))
	for _, f := range rm.order {
		row := rm.rows[f]
		inner := make(map[string]float64, len(row.order))
		for _, t := range row.order {
			inner[t] = row.coeff[t]
		}
		out[f] = inner
	}
	return out
}

func (rm RuleMatrix) MarshalJSON() ([]byte, error) {
	return writeObject(rm.order, func(from string) (any, error) {
		row := rm.rows[from]
		b, err := writeObject(row.order, func(to string) (any, error) {
			return row.coeff[to], nil
		})
		if err != nil {
			return nil, err
		}
		return json.RawMessage(b), nil
	})
}

func (rm *RuleMatrix) UnmarshalJSON(data []byte) error {
	out := NewRuleMatrix()
	dec := json.NewDecoder(bytes.NewReader(data))
	err := readObject(dec, func(from string, dec *json.Decoder) error {
		out.touchRow(from)
		return readObject(dec, func(to string, dec *json.Decoder) error {
			var g float64
			if err := dec.Decode(&g); err != nil {
				return err
			}
			out.Set(from, to, g)
			return nil
		})
	})
	if err != nil {
		return err
	}
	*rm = out
	return nil
}
