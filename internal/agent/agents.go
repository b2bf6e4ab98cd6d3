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

package agent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/smartcal/backend/internal/models"
)

// promptData is what every prompt template renders against.
type promptData struct {
	models.PreparationInput
	// Lead is true when the user runs the event: interviewer, instructor,
	// host, presenter or healthcare provider depending on the agent.
	Lead          bool
	TeamSport     bool
	ClientMeeting bool
}

func render(tmpl *template.Template, data promptData) (string, error) {
	if data.Attendees == nil {
		data.Attendees = []string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// containsAny reports whether s, lower-cased, contains any of the words.
func containsAny(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DefaultAgent handles events with no more specific agent.
type DefaultAgent struct{}

func (DefaultAgent) SystemMessage() string {
	return "You are a helpful assistant that prepares people for meetings. Keep your answers professional, concise and actionable."
}

func (DefaultAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(defaultPrompt, promptData{PreparationInput: in})
}

func (DefaultAgent) NewOutput() models.Preparation { return &models.PreparationOutput{} }

// InterviewAgent prepares either side of an interview.
type InterviewAgent struct{}

func (InterviewAgent) SystemMessage() string {
	return "You are a career and interview specialist. Give professional, insightful advice that helps the user succeed whether they are conducting the interview or being interviewed."
}

func (InterviewAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(interviewPrompt, promptData{
		PreparationInput: in,
		Lead:             containsAny(in.UserRole, "interviewer"),
	})
}

func (InterviewAgent) NewOutput() models.Preparation { return &models.InterviewPreparation{} }

// SocialAgent prepares gatherings and parties.
type SocialAgent struct{}

func (SocialAgent) SystemMessage() string {
	return "You are a social engagement expert. Your suggestions are warm and friendly, and they help the user feel comfortable, build connections and enjoy the occasion."
}

func (SocialAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(socialPrompt, promptData{PreparationInput: in})
}

func (SocialAgent) NewOutput() models.Preparation { return &models.SocialPreparation{} }

// LearningAgent prepares workshops, classes and training sessions.
type LearningAgent struct{}

func (LearningAgent) SystemMessage() string {
	return "You are an education specialist who prepares people for workshops, classes and training sessions. Keep suggestions practical and focused on learning outcomes for the user's role."
}

func (LearningAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(learningPrompt, promptData{
		PreparationInput: in,
		Lead:             containsAny(in.UserRole, "instructor", "teacher", "presenter"),
	})
}

func (LearningAgent) NewOutput() models.Preparation { return &models.LearningPreparation{} }

// HolidayAgent prepares holidays and celebrations.
type HolidayAgent struct{}

func (HolidayAgent) SystemMessage() string {
	return "You are a holiday and celebration expert. Your suggestions are festive and thoughtful, and they respect the traditions and customs of the occasion."
}

func (HolidayAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(holidayPrompt, promptData{
		PreparationInput: in,
		Lead:             containsAny(in.UserRole, "host", "organizer"),
	})
}

func (HolidayAgent) NewOutput() models.Preparation { return &models.HolidayPreparation{} }

// BusinessAgent prepares business and client meetings.
type BusinessAgent struct{}

func (BusinessAgent) SystemMessage() string {
	return "You are a business strategy consultant preparing professionals for important meetings. Be strategic and focus on business objectives and strong relationships."
}

func (BusinessAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(businessPrompt, promptData{
		PreparationInput: in,
		ClientMeeting:    containsAny(in.EventType, "client"),
	})
}

func (BusinessAgent) NewOutput() models.Preparation { return &models.BusinessPreparation{} }

// PresentationAgent prepares speakers and audience members.
type PresentationAgent struct{}

func (PresentationAgent) SystemMessage() string {
	return "You are a public speaking and presentation expert. Tailor advice to the user's role: delivery technique for presenters, effective listening for audience members."
}

func (PresentationAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(presentationPrompt, promptData{
		PreparationInput: in,
		Lead:             containsAny(in.UserRole, "presenter", "speaker", "host"),
	})
}

func (PresentationAgent) NewOutput() models.Preparation { return &models.PresentationPreparation{} }

// HealthAgent prepares medical appointments and wellness sessions.
type HealthAgent struct{}

func (HealthAgent) SystemMessage() string {
	return "You are a health preparation specialist. Help the user have a productive appointment. Focus on preparation, respect medical privacy and do not diagnose or prescribe."
}

func (HealthAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(healthPrompt, promptData{
		PreparationInput: in,
		Lead:             containsAny(in.UserRole, "doctor", "provider", "therapist", "practitioner"),
	})
}

func (HealthAgent) NewOutput() models.Preparation { return &models.HealthPreparation{} }

// FitnessAgent prepares workouts, games and matches.
type FitnessAgent struct{}

func (FitnessAgent) SystemMessage() string {
	return "You are a fitness and sports preparation specialist. Give practical, safety-first advice that improves performance and prevents injury, in an encouraging tone."
}

func (FitnessAgent) UserPrompt(in models.PreparationInput) (string, error) {
	return render(fitnessPrompt, promptData{
		PreparationInput: in,
		TeamSport:        containsAny(in.EventTitle, "game", "match", "league"),
	})
}

func (FitnessAgent) NewOutput() models.Preparation { return &models.FitnessPreparation{} }
