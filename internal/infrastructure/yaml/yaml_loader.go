package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
)

func LoadConditionPack(path string) (*domain.ConditionPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeConditionPack(data)
}

// DecodeConditionPack reads a pack document. Targets may be written either as
// DSL strings or as structured target_definition mappings.
func DecodeConditionPack(data []byte) (*domain.ConditionPack, error) {
	var pack domain.ConditionPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to decode condition pack: %w", err)
	}
	return &pack, nil
}
