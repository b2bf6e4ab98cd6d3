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

package commute

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	"Monday, January 2, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
}

// ParseEventTime combines a date and the start of a time range such as
// "2:00 PM - 3:00 PM" into an instant in loc. 12-hour times with AM/PM
// and 24-hour times are accepted.
func ParseEventTime(date, timeRange string, loc *time.Location) (time.Time, bool) {
	day, ok := parseDate(strings.TrimSpace(date), loc)
	if !ok {
		return time.Time{}, false
	}

	start := strings.TrimSpace(strings.SplitN(timeRange, "-", 2)[0])
	fields := strings.Fields(start)
	if len(fields) == 0 {
		return time.Time{}, false
	}

	hourMin := strings.SplitN(fields[0], ":", 2)
	hours, err := strconv.Atoi(hourMin[0])
	if err != nil {
		return time.Time{}, false
	}
	minutes := 0
	if len(hourMin) == 2 {
		if minutes, err = strconv.Atoi(hourMin[1]); err != nil {
			return time.Time{}, false
		}
	}

	if len(fields) > 1 {
		switch strings.ToUpper(fields[1]) {
		case "PM":
			if hours != 12 {
				hours += 12
			}
		case "AM":
			if hours == 12 {
				hours = 0
			}
		}
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return time.Time{}, false
	}

	y, m, d := day.Date()
	return time.Date(y, m, d, hours, minutes, 0, 0, loc), true
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
