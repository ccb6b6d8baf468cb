package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDayTypeNotFound  = errors.New("day type not found")
	ErrFoodItemNotFound = errors.New("food item not found")
	ErrDuplicateDayType = errors.New("duplicate day type id")
	ErrUnknownWeekday   = errors.New("unknown weekday")
	ErrUnknownMeal      = errors.New("unknown meal")
)

// DefaultProfileID is the profile that always exists and cannot be deleted
const DefaultProfileID = "principale"

// DietFoodItem is a single food entry inside a meal
type DietFoodItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"` // "g", "kg" or anything else (treated as grams)
	Prices   Prices  `json:"prices,omitempty"`
}

// MealType is one of the meal slots of a day
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// DayType is a reusable template for a kind of day
type DayType struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Breakfast []DietFoodItem `json:"breakfast"`
	Lunch     []DietFoodItem `json:"lunch"`
	Dinner    []DietFoodItem `json:"dinner"`
}

// Items returns breakfast, lunch and dinner items as one slice
func (d DayType) Items() []DietFoodItem {
	items := make([]DietFoodItem, 0, len(d.Breakfast)+len(d.Lunch)+len(d.Dinner))
	items = append(items, d.Breakfast...)
	items = append(items, d.Lunch...)
	items = append(items, d.Dinner...)
	return items
}

func (d *DayType) meal(meal MealType) (*[]DietFoodItem, error) {
	switch meal {
	case MealBreakfast:
		return &d.Breakfast, nil
	case MealLunch:
		return &d.Lunch, nil
	case MealDinner:
		return &d.Dinner, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMeal, meal)
}

// Weekday is a key of the week plan
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekPlan assigns each weekday to at most one day type id
type WeekPlan struct {
	Monday    *string `json:"monday"`
	Tuesday   *string `json:"tuesday"`
	Wednesday *string `json:"wednesday"`
	Thursday  *string `json:"thursday"`
	Friday    *string `json:"friday"`
	Saturday  *string `json:"saturday"`
	Sunday    *string `json:"sunday"`
}

func (w *WeekPlan) slot(day Weekday) (**string, error) {
	switch day {
	case Monday:
		return &w.Monday, nil
	case Tuesday:
		return &w.Tuesday, nil
	case Wednesday:
		return &w.Wednesday, nil
	case Thursday:
		return &w.Thursday, nil
	case Friday:
		return &w.Friday, nil
	case Saturday:
		return &w.Saturday, nil
	case Sunday:
		return &w.Sunday, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, day)
}

// Get returns the day type id assigned to a weekday, or nil
func (w WeekPlan) Get(day Weekday) *string {
	slot, err := w.slot(day)
	if err != nil {
		return nil
	}
	return *slot
}

// Set assigns a day type id to a weekday; nil or empty clears it
func (w *WeekPlan) Set(day Weekday, dayTypeID *string) error {
	slot, err := w.slot(day)
	if err != nil {
		return err
	}
	if dayTypeID == nil || *dayTypeID == "" {
		*slot = nil
		return nil
	}
	id := *dayTypeID
	*slot = &id
	return nil
}

// Usage counts how many weekdays reference each day type id
func (w WeekPlan) Usage() map[string]int {
	usage := make(map[string]int)
	for _, day := range Weekdays {
		if id := w.Get(day); id != nil && *id != "" {
			usage[*id]++
		}
	}
	return usage
}

// DietPlan is the full plan of one profile
type DietPlan struct {
	DayTypes []DayType `json:"day_types"`
	Week     WeekPlan  `json:"week"`
}

// NewDietPlan returns an empty plan with every weekday unassigned
func NewDietPlan() *DietPlan {
	return &DietPlan{DayTypes: []DayType{}}
}

// Normalize replaces nil slices with empty ones so stored documents always
// carry every meal slot
func (p *DietPlan) Normalize() {
	if p.DayTypes == nil {
		p.DayTypes = []DayType{}
	}
	for i := range p.DayTypes {
		dt := &p.DayTypes[i]
		if dt.Breakfast == nil {
			dt.Breakfast = []DietFoodItem{}
		}
		if dt.Lunch == nil {
			dt.Lunch = []DietFoodItem{}
		}
		if dt.Dinner == nil {
			dt.Dinner = []DietFoodItem{}
		}
	}
}

// Validate checks structural consistency: unique day type ids, week
// references to existing day types, known store keys on every item.
// Empty names and non-positive quantities are allowed; aggregation skips them.
func (p *DietPlan) Validate() error {
	seen := make(map[string]bool, len(p.DayTypes))
	for _, dt := range p.DayTypes {
		if strings.TrimSpace(dt.ID) == "" {
			return errors.New("day type id is required")
		}
		if seen[dt.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateDayType, dt.ID)
		}
		seen[dt.ID] = true

		for _, item := range dt.Items() {
			if err := item.Prices.Validate(); err != nil {
				return fmt.Errorf("item %q: %w", item.Name, err)
			}
		}
	}

	for _, day := range Weekdays {
		if id := p.Week.Get(day); id != nil && !seen[*id] {
			return fmt.Errorf("%s: %w: %q", day, ErrDayTypeNotFound, *id)
		}
	}

	return nil
}

// DayType looks up a day type by id
func (p *DietPlan) DayType(id string) (*DayType, error) {
	for i := range p.DayTypes {
		if p.DayTypes[i].ID == id {
			return &p.DayTypes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDayTypeNotFound, id)
}

// AddDayType appends a new empty day type. A blank name becomes "Day N".
func (p *DietPlan) AddDayType(name string) DayType {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Day %d", len(p.DayTypes)+1)
	}
	dt := DayType{
		ID:        "day-type-" + uuid.NewString(),
		Name:      name,
		Breakfast: []DietFoodItem{},
		Lunch:     []DietFoodItem{},
		Dinner:    []DietFoodItem{},
	}
	p.DayTypes = append(p.DayTypes, dt)
	return dt
}

// RemoveDayType deletes a day type and clears every weekday pointing at it
func (p *DietPlan) RemoveDayType(id string) error {
	idx := -1
	for i := range p.DayTypes {
		if p.DayTypes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrDayTypeNotFound, id)
	}
	p.DayTypes = append(p.DayTypes[:idx], p.DayTypes[idx+1:]...)

	for _, day := range Weekdays {
		if ref := p.Week.Get(day); ref != nil && *ref == id {
			_ = p.Week.Set(day, nil)
		}
	}
	return nil
}

// RenameDayType changes the display name of a day type
func (p *DietPlan) RenameDayType(id, name string) error {
	dt, err := p.DayType(id)
	if err != nil {
		return err
	}
	dt.Name = name
	return nil
}

// AddFoodItem appends an item to a meal, assigning an id when missing
func (p *DietPlan) AddFoodItem(dayTypeID string, meal MealType, item DietFoodItem) (DietFoodItem, error) {
	dt, err := p.DayType(dayTypeID)
	if err != nil {
		return DietFoodItem{}, err
	}
	slot, err := dt.meal(meal)
	if err != nil {
		return DietFoodItem{}, err
	}
	if item.ID == "" {
		item.ID = "food-" + uuid.NewString()
	}
	if item.Unit == "" {
		item.Unit = string(UnitGram)
	}
	*slot = append(*slot, item)
	return item, nil
}

// UpdateFoodItem replaces the item with the same id inside a meal
func (p *DietPlan) UpdateFoodItem(dayTypeID string, meal MealType, item DietFoodItem) error {
	dt, err := p.DayType(dayTypeID)
	if err != nil {
		return err
	}
	slot, err := dt.meal(meal)
	if err != nil {
		return err
	}
	for i := range *slot {
		if (*slot)[i].ID == item.ID {
			(*slot)[i] = item
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFoodItemNotFound, item.ID)
}

// RemoveFoodItem deletes an item from a meal
func (p *DietPlan) RemoveFoodItem(dayTypeID string, meal MealType, itemID string) error {
	dt, err := p.DayType(dayTypeID)
	if err != nil {
		return err
	}
	slot, err := dt.meal(meal)
	if err != nil {
		return err
	}
	for i := range *slot {
		if (*slot)[i].ID == itemID {
			*slot = append((*slot)[:i], (*slot)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFoodItemNotFound, itemID)
}

// AssignWeekday points a weekday at a day type, or clears it when dayTypeID is nil
func (p *DietPlan) AssignWeekday(day Weekday, dayTypeID *string) error {
	if dayTypeID != nil && *dayTypeID != "" {
		if _, err := p.DayType(*dayTypeID); err != nil {
			return err
		}
	}
	return p.Week.Set(day, dayTypeID)
}

// Profiles maps a profile id to its diet plan
type Profiles map[string]DietPlan

// IDs returns the profile ids in sorted order
func (p Profiles) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Request types

// AddDayTypeRequest is the request body for adding a day type
type AddDayTypeRequest struct {
	Name string `json:"name"`
}

// AssignWeekdayRequest is the request body for assigning a weekday.
// A null day_type_id clears the day.
type AssignWeekdayRequest struct {
	DayTypeID *string `json:"day_type_id"`
}

// RenameDayTypeRequest is the request body for renaming a day type
type RenameDayTypeRequest struct {
	Name string `json:"name"`
}

// ImportFoodItemsRequest carries free text with one food per line
type ImportFoodItemsRequest struct {
	Content string `json:"content"`
}
