package infrastructure

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/domain/model"
)

// CartPatcher applies client edits to a cart and reports server-side deltas.
type CartPatcher struct{}

// Apply applies an RFC 6902 patch to the cart.
func (CartPatcher) Apply(original model.Cart, patchData []byte) (model.Cart, error) {
	return ApplyCartPatch(original, patchData)
}

func (CartPatcher) MergePatch(before, after any) ([]byte, error) {
	return CreateMergePatch(before, after)
}

func ApplyCartPatch(original model.Cart, patchData []byte) (model.Cart, error) {
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return original, err
	}

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return original, fmt.Errorf("%w: decode: %v", domain.ErrInvalidPatch, err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return original, fmt.Errorf("%w: apply: %v", domain.ErrInvalidPatch, err)
	}

	var updated model.Cart
	if err := json.Unmarshal(modifiedJSON, &updated); err != nil {
		return original, fmt.Errorf("%w: %v", domain.ErrInvalidPatch, err)
	}
	return updated, nil
}

// CreateMergePatch returns the RFC 7386 merge patch turning before into after.
func CreateMergePatch(before, after any) ([]byte, error) {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return nil, err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(beforeJSON, afterJSON)
}
