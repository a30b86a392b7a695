package condition

import (
	"cmp"
	"encoding/json"
	"math"
	"reflect"
	"slices"

	"github.com/Victor-armando18/cart-pricing/internal/domain/target"
)

// Collection holds conditions keyed by name in insertion order. Add and
// Remove mutate the collection; every other method returns a new one.
type Collection struct {
	items []*Condition
	index map[string]int
}

func NewCollection(conditions ...*Condition) *Collection {
	c := &Collection{index: make(map[string]int, len(conditions))}
	c.Add(conditions...)
	return c
}

// FromDefinitions builds a collection from stored definitions.
func FromDefinitions(defs []Definition) (*Collection, error) {
	c := NewCollection()
	for _, d := range defs {
		cond, err := FromDefinition(d)
		if err != nil {
			return nil, err
		}
		c.Add(cond)
	}
	return c, nil
}

// Add upserts by name. A replaced condition keeps its position.
func (c *Collection) Add(conditions ...*Condition) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	for _, cond := range conditions {
		if cond == nil {
			continue
		}
		if i, ok := c.index[cond.Name()]; ok {
			c.items[i] = cond
			continue
		}
		c.index[cond.Name()] = len(c.items)
		c.items = append(c.items, cond)
	}
}

// Remove deletes the named condition and reports whether it existed.
func (c *Collection) Remove(name string) bool {
	i, ok := c.index[name]
	if !ok {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	delete(c.index, name)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].Name()] = j
	}
	return true
}

func (c *Collection) Get(name string) (*Condition, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.items[i], true
}

func (c *Collection) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

func (c *Collection) IsEmpty() bool { return c.Len() == 0 }

// All returns the conditions in iteration order.
func (c *Collection) All() []*Condition {
	if c == nil {
		return nil
	}
	return slices.Clone(c.items)
}

func (c *Collection) Names() []string {
	names := make([]string, 0, c.Len())
	for _, cond := range c.All() {
		names = append(names, cond.Name())
	}
	return names
}

func (c *Collection) First() (*Condition, bool) {
	if c.IsEmpty() {
		return nil, false
	}
	return c.items[0], true
}

func (c *Collection) Filter(keep func(*Condition) bool) *Collection {
	out := NewCollection()
	for _, cond := range c.All() {
		if keep(cond) {
			out.Add(cond)
		}
	}
	return out
}

func (c *Collection) Reject(drop func(*Condition) bool) *Collection {
	return c.Filter(func(cond *Condition) bool { return !drop(cond) })
}

// Merge returns a copy of c with other's conditions upserted on top.
func (c *Collection) Merge(other *Collection) *Collection {
	out := NewCollection(c.All()...)
	out.Add(other.All()...)
	return out
}

func (c *Collection) ByType(typ string) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.Type() == typ })
}

// ByTarget matches conditions whose target serializes to the same DSL.
func (c *Collection) ByTarget(t target.Target) *Collection {
	dsl := t.DSL()
	return c.Filter(func(cond *Condition) bool { return cond.Target().DSL() == dsl })
}

func (c *Collection) ByScope(scope target.Scope) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.Target().Scope == scope })
}

func (c *Collection) ByPhase(phase target.Phase) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.Target().Phase == phase })
}

func (c *Collection) ByApplication(application target.Application) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.Target().Application == application })
}

func (c *Collection) ByValue(value string) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.Value() == value })
}

func (c *Collection) Discounts() *Collection {
	return c.Filter((*Condition).IsDiscount)
}

func (c *Collection) Charges() *Collection {
	return c.Filter((*Condition).IsCharge)
}

func (c *Collection) Percentages() *Collection {
	return c.Filter((*Condition).IsPercentage)
}

func (c *Collection) Dynamic() *Collection {
	return c.Filter((*Condition).IsDynamic)
}

func (c *Collection) HasDiscounts() bool {
	return slices.ContainsFunc(c.All(), (*Condition).IsDiscount)
}

func (c *Collection) HasCharges() bool {
	return slices.ContainsFunc(c.All(), (*Condition).IsCharge)
}

// SortByOrder returns a copy ordered by Order; ties keep insertion order.
func (c *Collection) SortByOrder() *Collection {
	items := c.All()
	slices.SortStableFunc(items, func(a, b *Condition) int { return cmp.Compare(a.Order(), b.Order()) })
	return NewCollection(items...)
}

// ApplyAll folds every condition, sorted by order, over amount.
func (c *Collection) ApplyAll(amount float64) float64 {
	for _, cond := range c.SortByOrder().items {
		amount = cond.Apply(amount)
	}
	return amount
}

// TotalDiscount sums |CalculatedValue(base)| over discounts, each evaluated
// against the same base.
func (c *Collection) TotalDiscount(base float64) float64 {
	var total float64
	for _, cond := range c.Discounts().items {
		total += math.Abs(cond.CalculatedValue(base))
	}
	return total
}

// TotalCharges sums CalculatedValue(base) over charges against the same base.
func (c *Collection) TotalCharges(base float64) float64 {
	var total float64
	for _, cond := range c.Charges().items {
		total += cond.CalculatedValue(base)
	}
	return total
}

type Summary struct {
	TotalConditions     int     `json:"total_conditions"`
	Discounts           int     `json:"discounts"`
	Charges             int     `json:"charges"`
	Percentages         int     `json:"percentages"`
	TotalDiscountAmount float64 `json:"total_discount_amount"`
	TotalChargesAmount  float64 `json:"total_charges_amount"`
	NetAdjustment       float64 `json:"net_adjustment"`
}

// Summary counts the collection and, for a positive base, reports amounts.
func (c *Collection) Summary(base float64) Summary {
	s := Summary{
		TotalConditions: c.Len(),
		Discounts:       c.Discounts().Len(),
		Charges:         c.Charges().Len(),
		Percentages:     c.Percentages().Len(),
	}
	if base > 0 {
		s.TotalDiscountAmount = c.TotalDiscount(base)
		s.TotalChargesAmount = c.TotalCharges(base)
		s.NetAdjustment = c.ApplyAll(base) - base
	}
	return s
}

// WithAttribute keeps conditions that carry the attribute key.
func (c *Collection) WithAttribute(key string) *Collection {
	return c.Filter(func(cond *Condition) bool { return cond.HasAttribute(key) })
}

func (c *Collection) WithAttributeValue(key string, value any) *Collection {
	return c.Filter(func(cond *Condition) bool { return attributeEquals(cond, key, value) })
}

func (c *Collection) FindByAttribute(key string, value any) (*Condition, bool) {
	for _, cond := range c.All() {
		if attributeEquals(cond, key, value) {
			return cond, true
		}
	}
	return nil, false
}

func attributeEquals(cond *Condition, key string, value any) bool {
	v, ok := cond.Attribute(key)
	return ok && reflect.DeepEqual(v, value)
}

func (c *Collection) RemoveByType(typ string) *Collection {
	return c.Reject(func(cond *Condition) bool { return cond.Type() == typ })
}

func (c *Collection) RemoveByTarget(t target.Target) *Collection {
	dsl := t.DSL()
	return c.Reject(func(cond *Condition) bool { return cond.Target().DSL() == dsl })
}

// Group is one bucket of a grouping, in first-seen key order.
type Group struct {
	Key        string
	Conditions *Collection
}

type Groups []Group

func (g Groups) Get(key string) (*Collection, bool) {
	for _, group := range g {
		if group.Key == key {
			return group.Conditions, true
		}
	}
	return nil, false
}

func (g Groups) Keys() []string {
	keys := make([]string, len(g))
	for i, group := range g {
		keys[i] = group.Key
	}
	return keys
}

func (c *Collection) GroupBy(key func(*Condition) string) Groups {
	var groups Groups
	pos := map[string]int{}
	for _, cond := range c.All() {
		k := key(cond)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, Group{Key: k, Conditions: NewCollection()})
		}
		groups[i].Conditions.Add(cond)
	}
	return groups
}

func (c *Collection) GroupByType() Groups {
	return c.GroupBy((*Condition).Type)
}

func (c *Collection) GroupByTarget() Groups {
	return c.GroupBy(func(cond *Condition) string { return cond.Target().DSL() })
}

func (c *Collection) GroupByScope() Groups {
	return c.GroupBy(func(cond *Condition) string { return string(cond.Target().Scope) })
}

func (c *Collection) GroupByPhase() Groups {
	return c.GroupBy(func(cond *Condition) string { return string(cond.Target().Phase) })
}

func (c *Collection) Definitions() []Definition {
	defs := make([]Definition, 0, c.Len())
	for _, cond := range c.All() {
		defs = append(defs, cond.Definition())
	}
	return defs
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Definitions())
}

func (c *Collection) UnmarshalJSON(data []byte) error {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return err
	}
	parsed, err := FromDefinitions(defs)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
