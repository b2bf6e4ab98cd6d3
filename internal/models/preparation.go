// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package models defines the request and response shapes shared between
// the HTTP API, the preparation agents and the calendar helpers.
package models

// DefaultLocation is used when a preparation request names no location.
const DefaultLocation = "San Francisco, CA"

// PreparationInput is the event description a client submits for
// preparation materials.
type PreparationInput struct {
	EventTitle           string   `json:"eventTitle"`
	EventDescription     string   `json:"eventDescription"`
	EventDate            string   `json:"eventDate"`
	EventTime            string   `json:"eventTime"`
	Attendees            []string `json:"attendees"`
	PreviousMeetingNotes string   `json:"previousMeetingNotes,omitempty"`
	UserRole             string   `json:"userRole,omitempty"`
	EventType            string   `json:"eventType,omitempty"`
	Location             string   `json:"location,omitempty"`
}

// Preparation is implemented by the base output and every variant.
type Preparation interface {
	Base() *PreparationOutput
}

// PreparationOutput holds the fields every agent produces.
type PreparationOutput struct {
	Summary           string   `json:"summary"`
	KeyPoints         []string `json:"keyPoints"`
	SuggestedApproach string   `json:"suggestedApproach"`
	Questions         []string `json:"questions"`
	RelevantTopics    []string `json:"relevantTopics"`
	ActionItems       []string `json:"actionItems,omitempty"`
}

// Base returns the shared fields.
func (p *PreparationOutput) Base() *PreparationOutput { return p }

type InterviewPreparation struct {
	PreparationOutput
	CommonPitfalls           []string `json:"commonPitfalls"`
	FollowUpStrategy         string   `json:"followUpStrategy"`
	ResearchTopics           []string `json:"researchTopics"`
	RelevantExperiencePoints []string `json:"relevantExperiencePoints,omitempty"`
	EvaluationCriteria       []string `json:"evaluationCriteria,omitempty"`
}

type SocialPreparation struct {
	PreparationOutput
	Icebreakers     []string `json:"icebreakers"`
	DressCode       string   `json:"dressCode,omitempty"`
	GiftSuggestions []string `json:"giftSuggestions,omitempty"`
	VenueInfo       string   `json:"venueInfo,omitempty"`
}

type LearningPreparation struct {
	PreparationOutput
	Prerequisites        []string `json:"prerequisites"`
	RecommendedResources []string `json:"recommendedResources"`
	NoteTakingStrategy   string   `json:"noteTakingStrategy,omitempty"`
	PostEventPractice    []string `json:"postEventPractice,omitempty"`
}

type HealthPreparation struct {
	PreparationOutput
	MedicalHistoryItems   []string `json:"medicalHistoryItems"`
	SymptomTracking       string   `json:"symptomTracking,omitempty"`
	HealthMetricsToReview []string `json:"healthMetricsToReview,omitempty"`
	FollowUpQuestions     []string `json:"followUpQuestions,omitempty"`
}

// BusinessPreparation extras are optional; the business prompt only asks
// for the shared fields.
type BusinessPreparation struct {
	PreparationOutput
	StakeholderInterests []string `json:"stakeholderInterests,omitempty"`
	NegotiationPoints    []string `json:"negotiationPoints,omitempty"`
	MarketInsights       []string `json:"marketInsights,omitempty"`
	CompetitiveAnalysis  string   `json:"competitiveAnalysis,omitempty"`
}

type PresentationPreparation struct {
	PreparationOutput
	SlideDeckTips                []string `json:"slideDeckTips,omitempty"`
	DeliveryTechniques           []string `json:"deliveryTechniques,omitempty"`
	AudienceEngagementStrategies []string `json:"audienceEngagementStrategies,omitempty"`
	VisualAidSuggestions         []string `json:"visualAidSuggestions,omitempty"`
}

// HolidayPreparation is the only variant the API augments after
// generation: LocalEvents is filled from the local events lookup.
type HolidayPreparation struct {
	PreparationOutput
	TraditionSuggestions  []string     `json:"traditionSuggestions"`
	CulturalNotes         []string     `json:"culturalNotes,omitempty"`
	DecorationIdeas       []string     `json:"decorationIdeas,omitempty"`
	FoodAndBeverages      []string     `json:"foodAndBeverages,omitempty"`
	MusicPlaylist         []string     `json:"musicPlaylist,omitempty"`
	GiftExchangeRules     string       `json:"giftExchangeRules,omitempty"`
	LocalEvents           []LocalEvent `json:"localEvents,omitempty"`
	HolidayHistory        string       `json:"holidayHistory,omitempty"`
	CustomTraditions      []string     `json:"customTraditions,omitempty"`
	DietaryConsiderations []string     `json:"dietaryConsiderations,omitempty"`
	WeatherConsiderations string       `json:"weatherConsiderations,omitempty"`
	AttireRecommendations string       `json:"attireRecommendations,omitempty"`
	PhotographyTips       []string     `json:"photographyTips,omitempty"`
	BudgetingTips         []string     `json:"budgetingTips,omitempty"`
}

type LocationDetails struct {
	Name              string       `json:"name"`
	Address           string       `json:"address"`
	ParkingInfo       string       `json:"parkingInfo"`
	FacilityAmenities []string     `json:"facilityAmenities"`
	CommuteInfo       *CommuteInfo `json:"commuteInfo,omitempty"`
}

type TeamInfo struct {
	TeamName            string `json:"teamName"`
	Opponents           string `json:"opponents"`
	LeagueInfo          string `json:"leagueInfo"`
	UniformRequirements string `json:"uniformRequirements"`
}

type FitnessPreparation struct {
	PreparationOutput
	EquipmentNeeded       []string         `json:"equipmentNeeded"`
	WarmupRoutine         []string         `json:"warmupRoutine"`
	NutritionTips         []string         `json:"nutritionTips"`
	HydrationGuidelines   string           `json:"hydrationGuidelines"`
	WeatherConsiderations string           `json:"weatherConsiderations"`
	LocationDetails       *LocationDetails `json:"locationDetails,omitempty"`
	TeamInfo              *TeamInfo        `json:"teamInfo,omitempty"`
	FitnessGoals          []string         `json:"fitnessGoals"`
	RecoveryTips          []string         `json:"recoveryTips"`
	SafetyPrecautions     []string         `json:"safetyPrecautions"`
	PerformanceMetrics    []string         `json:"performanceMetrics"`
}
