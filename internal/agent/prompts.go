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
	"strings"
	"text/template"
)

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

func newPrompt(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(promptFuncs).Parse(text))
}

const baseJSONFields = `  "summary": "string",
  "keyPoints": ["string", ...],
  "suggestedApproach": "string",
  "questions": ["string", ...],
  "relevantTopics": ["string", ...],
  "actionItems": ["string", ...]`

var defaultPrompt = newPrompt("default", `You are helping someone get ready for a meeting or event.

Event details:
- Title: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Attendees: {{join .Attendees ", "}}
{{- if .PreviousMeetingNotes}}
- Previous meeting notes: {{.PreviousMeetingNotes}}{{end}}
{{- if .UserRole}}
- Your role: {{.UserRole}}{{end}}

From these details, provide:
1. A short summary of the event (2-3 sentences)
2. 4-6 key points to remember
3. A suggested approach (3-4 sentences)
4. 4-6 questions to think through beforehand
5. 3-5 topics likely to come up
6. 2-4 action items to finish before the event

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`
}`)

var interviewPrompt = newPrompt("interview", `You are helping someone get ready for an interview.

Interview details:
- Title: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Participants: {{join .Attendees ", "}}
- Your role: {{if .Lead}}Interviewer{{else}}Interviewee{{end}}

From these details, provide:
1. A short summary of the interview (2-3 sentences)
2. 5-7 key points to remember
3. A suggested approach (3-4 sentences)
4. 6-8 preparation questions{{if .Lead}} (including strong questions to ask the candidate){{else}} (including questions you are likely to be asked){{end}}
5. 4-6 topics likely to come up
6. 3-5 action items to finish beforehand
7. 4-6 common pitfalls to avoid in this kind of interview
8. A follow-up strategy for after the interview (2-3 sentences)
9. 3-5 topics to research beforehand
10. {{if .Lead}}4-6 criteria for evaluating the candidate{{else}}4-6 experiences or skills worth highlighting{{end}}

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`,
  "commonPitfalls": ["string", ...],
  "followUpStrategy": "string",
  "researchTopics": ["string", ...],
  {{if .Lead}}"evaluationCriteria": ["string", ...]{{else}}"relevantExperiencePoints": ["string", ...]{{end}}
}`)

var socialPrompt = newPrompt("social", `You are helping someone get ready for a social event or gathering.

Social event details:
- Event: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Attendees: {{join .Attendees ", "}}
{{- if .UserRole}}
- Your role: {{.UserRole}}{{end}}

From these details, provide:
1. A short summary of the gathering (2-3 sentences)
2. 4-6 things to remember
3. A suggested approach focused on enjoyment and connection (3-4 sentences)
4. 4-6 conversation starters or discussion topics
5. 3-5 interests you might share with other attendees
6. 2-4 things to bring or arrange beforehand
7. 5-7 icebreakers specific to this event
8. Dress code suggestions for the occasion
9. Gift ideas, if the occasion calls for one
10. Helpful notes about the venue

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`,
  "icebreakers": ["string", ...],
  "dressCode": "string",
  "giftSuggestions": ["string", ...],
  "venueInfo": "string"
}`)

var learningPrompt = newPrompt("learning", `You are helping someone get ready for a learning event such as a workshop, class or training session.

Learning event details:
- Title: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Participants: {{join .Attendees ", "}}
- Your role: {{if .Lead}}Instructor/Presenter{{else}}Learner/Participant{{end}}

From these details, provide:
1. A short summary of the session (2-3 sentences)
2. 5-7 concepts or skills likely to be covered
3. A suggested approach for getting the most out of it{{if .Lead}} as the person teaching{{end}} (3-4 sentences)
4. 5-7 preparation questions{{if .Lead}} about teaching the material{{else}} to study or ask during the session{{end}}
5. 4-6 topics worth exploring beforehand
6. 3-5 materials to review or prepare
7. 3-5 prerequisites or foundations the session assumes
8. 4-6 recommended books, articles or videos
9. {{if .Lead}}Teaching strategies that suit this subject{{else}}A note-taking strategy for this kind of session{{end}}
10. 3-5 practice activities for after the event

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`,
  "prerequisites": ["string", ...],
  "recommendedResources": ["string", ...],
  "noteTakingStrategy": "string",
  "postEventPractice": ["string", ...]
}`)

var holidayPrompt = newPrompt("holiday", `You are helping someone get ready for a holiday event or celebration.

Holiday event details:
- Event: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Attendees: {{join .Attendees ", "}}
- Your role: {{if .Lead}}Host/Organizer{{else}}Guest/Participant{{end}}

From these details, provide:
1. A short summary of the celebration (2-3 sentences)
2. 4-6 things to remember
3. A suggested approach for {{if .Lead}}hosting{{else}}taking part in{{end}} the event (3-4 sentences)
4. 4-6 preparation considerations {{if .Lead}}(decor, food, activities, gifts){{else}}(gifts, what to bring, attire){{end}}
5. 3-5 traditions or customs tied to this holiday
6. {{if .Lead}}4-6 items for a hosting checklist{{else}}2-4 ways to contribute to the event{{end}}

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`
}`)

var businessPrompt = newPrompt("business", `You are helping someone get ready for a business meeting{{if .ClientMeeting}} with a client{{end}}.

Meeting details:
- Meeting: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Attendees: {{join .Attendees ", "}}
{{- if .UserRole}}
- Your role: {{.UserRole}}{{end}}
{{- if .PreviousMeetingNotes}}
- Previous meeting notes: {{.PreviousMeetingNotes}}{{end}}

From these details, provide:
1. A short summary of the meeting (2-3 sentences)
2. 5-7 key points to prepare
3. A suggested approach for {{if .ClientMeeting}}handling the client conversation{{else}}running the meeting{{end}} (3-4 sentences)
4. 6-8 preparation questions
5. 4-6 business topics or industry trends worth raising
6. 3-5 action items to finish beforehand

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`
}`)

var presentationPrompt = newPrompt("presentation", `You are helping someone get ready for a presentation or public speaking event.

Presentation details:
- Title: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Audience: {{join .Attendees ", "}}
- Your role: {{if .Lead}}Presenter/Speaker{{else}}Audience Member{{end}}

From these details, provide:
1. A short summary of the presentation (2-3 sentences)
2. {{if .Lead}}5-7 points to cover or emphasize{{else}}4-6 points to listen for{{end}}
3. {{if .Lead}}A suggested approach for an engaging delivery{{else}}A suggested approach for getting the most value as a listener{{end}} (3-4 sentences)
4. {{if .Lead}}6-8 questions to work through before presenting{{else}}4-6 questions to ask the presenter{{end}}
5. 4-6 topics that deepen understanding of the subject
6. {{if .Lead}}3-5 preparation tasks before presenting{{else}}2-4 ways to prepare for attending{{end}}

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`
}`)

var healthPrompt = newPrompt("health", `You are helping someone get ready for a health appointment or wellness event.

Health event details:
- Event: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Participants: {{join .Attendees ", "}}
- Your role: {{if .Lead}}Healthcare Provider{{else}}Patient/Participant{{end}}

From these details, provide:
1. A short summary of the appointment (2-3 sentences)
2. 4-6 key points to remember
3. A suggested approach for {{if .Lead}}running the session{{else}}getting the most out of the appointment{{end}} (3-4 sentences)
4. {{if .Lead}}5-7 assessment questions{{else}}5-7 questions for your provider{{end}}
5. 3-5 health topics worth reviewing
6. {{if .Lead}}3-5 items to have ready{{else}}3-5 items to prepare or bring{{end}}
7. {{if .Lead}}4-6 patient history items to review{{else}}4-6 medical history items to have on hand{{end}}
8. {{if .Lead}}A documentation approach for the visit{{else}}How to track symptoms or metrics relevant to the visit{{end}}
9. {{if .Lead}}3-5 evidence-based approaches to consider{{else}}3-5 health metrics to review beforehand{{end}}
10. {{if .Lead}}4-6 possible follow-up recommendations{{else}}4-6 follow-up questions if time allows{{end}}

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`,
  "medicalHistoryItems": ["string", ...],
  "symptomTracking": "string",
  "healthMetricsToReview": ["string", ...],
  "followUpQuestions": ["string", ...]
}`)

var fitnessPrompt = newPrompt("fitness", `You are helping someone get ready for a sports or fitness activity.

Fitness event details:
- Event: {{.EventTitle}}
- Description: {{.EventDescription}}
- Date: {{.EventDate}}
- Time: {{.EventTime}}
- Participants: {{join .Attendees ", "}}
- Your role: {{if .UserRole}}{{.UserRole}}{{else}}Participant{{end}}
{{- if .Location}}
- Location: {{.Location}}{{end}}

From these details, provide:
1. A short summary of the activity (2-3 sentences)
2. 4-6 key points to remember
3. A suggested approach (3-4 sentences)
4. 4-6 preparation questions
5. 3-5 skills or topics to focus on
6. 3-5 action items to finish beforehand
7. Required equipment or gear
8. A warm-up routine
9. Nutrition and hydration guidance
10. Weather considerations and precautions
11. Location details: venue name, address, parking and available amenities
12. 3-5 fitness goals for the activity
13. Recovery tips and post-activity care
14. Safety precautions
15. Performance metrics worth tracking
{{- if .TeamSport}}
16. Team information: team name, opponents, league and uniform requirements{{end}}

Reply with a single JSON object shaped like:
{
`+baseJSONFields+`,
  "equipmentNeeded": ["string", ...],
  "warmupRoutine": ["string", ...],
  "nutritionTips": ["string", ...],
  "hydrationGuidelines": "string",
  "weatherConsiderations": "string",
  "locationDetails": {
    "name": "string",
    "address": "string",
    "parkingInfo": "string",
    "facilityAmenities": ["string", ...]
  },
{{- if .TeamSport}}
  "teamInfo": {
    "teamName": "string",
    "opponents": "string",
    "leagueInfo": "string",
    "uniformRequirements": "string"
  },{{end}}
  "fitnessGoals": ["string", ...],
  "recoveryTips": ["string", ...],
  "safetyPrecautions": ["string", ...],
  "performanceMetrics": ["string", ...]
}`)
