package server

import "villainlair/internal/domain"

// Request bodies for create endpoints. Domain structs are not used
// directly as inputs so that server-managed fields (ids, status, mood)
// stay out of the request schema.

type CreateMinionRequest struct {
	Name         string  `json:"name" minLength:"1"`
	SkillLevel   int     `json:"skill_level" minimum:"1" maximum:"10"`
	Specialty    string  `json:"specialty" minLength:"1"`
	LoyaltyScore int     `json:"loyalty_score,omitempty" minimum:"0" maximum:"100"`
	SalaryDemand float64 `json:"salary_demand"`
}

func (r CreateMinionRequest) toDomain() domain.Minion {
	return domain.Minion{
		Name:         r.Name,
		SkillLevel:   r.SkillLevel,
		Specialty:    r.Specialty,
		LoyaltyScore: r.LoyaltyScore,
		SalaryDemand: r.SalaryDemand,
	}
}

type CreateSchemeRequest struct {
	Name                 string  `json:"name" minLength:"1"`
	Description          string  `json:"description,omitempty"`
	Budget               float64 `json:"budget"`
	RequiredSkillLevel   int     `json:"required_skill_level,omitempty" minimum:"0" maximum:"10"`
	RequiredSpecialty    string  `json:"required_specialty,omitempty"`
	StartDate            *string `json:"start_date,omitempty" format:"date-time"`
	TargetCompletionDate string  `json:"target_completion_date" format:"date-time"`
	DiabolicalRating     int     `json:"diabolical_rating,omitempty" minimum:"0" maximum:"10"`
}

func (r CreateSchemeRequest) toDomain() domain.EvilScheme {
	return domain.EvilScheme{
		Name:                 r.Name,
		Description:          r.Description,
		Budget:               r.Budget,
		RequiredSkillLevel:   r.RequiredSkillLevel,
		RequiredSpecialty:    r.RequiredSpecialty,
		StartDate:            r.StartDate,
		TargetCompletionDate: r.TargetCompletionDate,
		DiabolicalRating:     r.DiabolicalRating,
	}
}

type CreateEquipmentRequest struct {
	Name               string  `json:"name" minLength:"1"`
	Category           string  `json:"category" minLength:"1"`
	Condition          int     `json:"condition,omitempty" minimum:"0" maximum:"100"`
	PurchasePrice      float64 `json:"purchase_price"`
	MaintenanceCost    float64 `json:"maintenance_cost,omitempty"`
	RequiresSpecialist bool    `json:"requires_specialist,omitempty"`
}

func (r CreateEquipmentRequest) toDomain() domain.Equipment {
	return domain.Equipment{
		Name:               r.Name,
		Category:           r.Category,
		Condition:          r.Condition,
		PurchasePrice:      r.PurchasePrice,
		MaintenanceCost:    r.MaintenanceCost,
		RequiresSpecialist: r.RequiresSpecialist,
	}
}

type CreateBaseRequest struct {
	Name               string  `json:"name" minLength:"1"`
	Location           string  `json:"location,omitempty"`
	Capacity           int     `json:"capacity"`
	SecurityLevel      int     `json:"security_level"`
	MonthlyMaintenance float64 `json:"monthly_maintenance,omitempty"`
	HasDoomsdayDevice  bool    `json:"has_doomsday_device,omitempty"`
}

func (r CreateBaseRequest) toDomain() domain.SecretBase {
	return domain.SecretBase{
		Name:               r.Name,
		Location:           r.Location,
		Capacity:           r.Capacity,
		SecurityLevel:      r.SecurityLevel,
		MonthlyMaintenance: r.MonthlyMaintenance,
		HasDoomsdayDevice:  r.HasDoomsdayDevice,
	}
}
