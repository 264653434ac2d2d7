package particles

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveRules writes rm to path as indented JSON.
func SaveRules(path string, rm RuleMatrix) error {
	data, err := json.MarshalIndent(rm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// LoadRules reads a matrix written by SaveRules, or any JSON object of
// objects of numbers.
func LoadRules(path string) (RuleMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleMatrix{}, fmt.Errorf("read rules: %w", err)
	}
	var rm RuleMatrix
	if err := json.Unmarshal(data, &rm); err != nil {
		return RuleMatrix{}, fmt.Errorf("decode rules %s: %w", path, err)
	}
	return rm, nil
}
