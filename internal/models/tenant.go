package models

type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

type Tenant struct {
	BaseEntity
	Name             string           `gorm:"type:varchar(200);not null" json:"name"`
	Slug             string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	SubscriptionPlan SubscriptionPlan `gorm:"type:varchar(20);not null;default:'free'" json:"subscription_plan"`
}
