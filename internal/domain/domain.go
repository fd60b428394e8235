package domain

// Scheme statuses.
const (
	StatusPlanning  = "Planning"
	StatusActive    = "Active"
	StatusOnHold    = "On Hold"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// Minion moods.
const (
	MoodHappy     = "Happy"
	MoodGrumpy    = "Grumpy"
	MoodBetrayal  = "Plotting Betrayal"
	MoodExhausted = "Exhausted"
)

// Deadline classifications.
const (
	DeadlineOnTrack = "On track"
	DeadlineDueSoon = "Due soon"
	DeadlineUrgent  = "Urgent"
	DeadlineOverdue = "Overdue"
)

// Equipment categories with special rules.
const CategoryDoomsday = "Doomsday Device"

type Minion struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	SkillLevel           int     `json:"skill_level"`
	Specialty            string  `json:"specialty"`
	LoyaltyScore         int     `json:"loyalty_score"`
	SalaryDemand         float64 `json:"salary_demand"`
	CurrentBaseID        *int64  `json:"current_base_id,omitempty"`
	CurrentSchemeID      *int64  `json:"current_scheme_id,omitempty"`
	MoodStatus           string  `json:"mood_status,omitempty"`
	LastMoodUpdate       string  `json:"last_mood_update,omitempty" format:"date-time"`
	SchemeAssignmentDate *string `json:"scheme_assignment_date,omitempty" format:"date-time"`
}

type EvilScheme struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description,omitempty"`
	Budget               float64 `json:"budget"`
	CurrentSpending      float64 `json:"current_spending"`
	RequiredSkillLevel   int     `json:"required_skill_level"`
	RequiredSpecialty    string  `json:"required_specialty"`
	Status               string  `json:"status" enum:"Planning,Active,On Hold,Completed,Failed"`
	StartDate            *string `json:"start_date,omitempty" format:"date-time"`
	TargetCompletionDate string  `json:"target_completion_date" format:"date-time"`
	DiabolicalRating     int     `json:"diabolical_rating"`
	SuccessLikelihood    int     `json:"success_likelihood"`
	PrimaryBaseID        *int64  `json:"primary_base_id,omitempty"`

	// Set by SchemeRules.ValidateBudgetStatus; not persisted.
	AllowNewAssignments bool `json:"allow_new_assignments,omitempty"`
}

type Equipment struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Category           string  `json:"category" enum:"Weapon,Vehicle,Gadget,Doomsday Device"`
	Condition          int     `json:"condition"`
	PurchasePrice      float64 `json:"purchase_price"`
	MaintenanceCost    float64 `json:"maintenance_cost"`
	AssignedSchemeID   *int64  `json:"assigned_scheme_id,omitempty"`
	StoredBaseID       *int64  `json:"stored_base_id,omitempty"`
	RequiresSpecialist bool    `json:"requires_specialist"`
	LastMaintenance    *string `json:"last_maintenance,omitempty" format:"date-time"`
}

type SecretBase struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Location           string  `json:"location"`
	Capacity           int     `json:"capacity"`
	SecurityLevel      int     `json:"security_level"`
	MonthlyMaintenance float64 `json:"monthly_maintenance"`
	HasDoomsdayDevice  bool    `json:"has_doomsday_device"`
	IsDiscovered       bool    `json:"is_discovered"`
	LastInspectionDate *string `json:"last_inspection_date,omitempty" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   int64  `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
