/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rules

import "time"

// ValueKind tags the variant carried by a Value.
type ValueKind string

const (
	KindPlayStatus     ValueKind = "play_status"
	KindDownloadStatus ValueKind = "download_status"
	KindPeriod         ValueKind = "period"
	KindInterval       ValueKind = "interval"
	KindInt            ValueKind = "int"
	KindString         ValueKind = "string"
	KindBool           ValueKind = "bool"
	KindFraction       ValueKind = "fraction"
)

// PlayStatus is the derived listening state of an episode.
type PlayStatus string

const (
	StatusUnplayed   PlayStatus = "unplayed"
	StatusInProgress PlayStatus = "in_progress"
	StatusPlayed     PlayStatus = "played"
)

// DownloadStatus is the local availability of an episode's audio.
type DownloadStatus string

const (
	DownloadNone     DownloadStatus = "not_downloaded"
	DownloadQueued   DownloadStatus = "queued"
	DownloadComplete DownloadStatus = "downloaded"
)

// Period names a relative date window ending now.
type Period string

const (
	PeriodDay         Period = "24h"
	PeriodWeek        Period = "week"
	PeriodMonth       Period = "month"
	PeriodThreeMonths Period = "3_months"
	PeriodSixMonths   Period = "6_months"
	PeriodYear        Period = "year"
)

// Cutoff returns the start of the window relative to now. Unknown periods
// collapse to now, so nothing matches them.
func (p Period) Cutoff(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodThreeMonths:
		return now.AddDate(0, -3, 0)
	case PeriodSixMonths:
		return now.AddDate(0, -6, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now
	}
}

// Value is the tagged union paired with a rule's operator. Exactly one
// variant is meaningful, selected by Kind.
type Value struct {
	Kind     ValueKind      `json:"kind"`
	Status   PlayStatus     `json:"status,omitempty"`
	Download DownloadStatus `json:"download,omitempty"`
	Period   Period         `json:"period,omitempty"`
	Seconds  int64          `json:"seconds,omitempty"`
	Int      int            `json:"int,omitempty"`
	Str      string         `json:"string,omitempty"`
	Bool     bool           `json:"bool,omitempty"`
	Fraction float64        `json:"fraction,omitempty"`
}

// StatusValue wraps a play status.
func StatusValue(s PlayStatus) Value { return Value{Kind: KindPlayStatus, Status: s} }

// DownloadValue wraps a download status.
func DownloadValue(d DownloadStatus) Value { return Value{Kind: KindDownloadStatus, Download: d} }

// PeriodValue wraps a relative date period.
func PeriodValue(p Period) Value { return Value{Kind: KindPeriod, Period: p} }

// IntervalValue wraps a duration expressed in whole seconds.
func IntervalValue(d time.Duration) Value {
	return Value{Kind: KindInterval, Seconds: int64(d / time.Second)}
}

// IntValue wraps an integer, used for ratings.
func IntValue(n int) Value { return Value{Kind: KindInt, Int: n} }

// StringValue wraps free text.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolValue wraps a flag comparison.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// FractionValue wraps a playback progress fraction in [0, 1].
func FractionValue(f float64) Value { return Value{Kind: KindFraction, Fraction: f} }

// Interval returns the time-interval variant as a duration.
func (v Value) Interval() time.Duration { return time.Duration(v.Seconds) * time.Second }
