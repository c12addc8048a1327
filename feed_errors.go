package main

import (
	"errors"
	"fmt"
)

// FeedSource names one of the two upstream feeds.
type FeedSource string

const (
	SourceStock   FeedSource = "stock"
	SourceWeather FeedSource = "weather"
)

// FeedUnavailableError is returned when a feed answers with a non-2xx status.
type FeedUnavailableError struct {
	Source FeedSource
	Status int
}

func (e *FeedUnavailableError) Error() string {
	return fmt.Sprintf("%s feed unavailable: status %d", e.Source, e.Status)
}

// MalformedPayloadError is returned when a feed body cannot be decoded.
type MalformedPayloadError struct {
	Source FeedSource
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("%s feed returned a malformed payload: %v", e.Source, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// NetworkFailureError is returned when no response was received at all.
type NetworkFailureError struct {
	Source FeedSource
	Err    error
}

func (e *NetworkFailureError) Error() string {
	return fmt.Sprintf("%s feed request failed: %v", e.Source, e.Err)
}

func (e *NetworkFailureError) Unwrap() error { return e.Err }

// ErrorKind classifies a poll failure for the journal.
func ErrorKind(err error) string {
	var unavailable *FeedUnavailableError
	var malformed *MalformedPayloadError
	var network *NetworkFailureError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		return "feed_unavailable"
	case errors.As(err, &malformed):
		return "malformed_payload"
	case errors.As(err, &network):
		return "network_failure"
	}
	return "unknown"
}

// DescribeError turns a poll failure into the message shown to the user.
func DescribeError(err error) string {
	var unavailable *FeedUnavailableError
	var malformed *MalformedPayloadError
	var network *NetworkFailureError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		return fmt.Sprintf("The %s feed is unavailable right now (HTTP %d). Showing the last known data.", unavailable.Source, unavailable.Status)
	case errors.As(err, &malformed):
		return fmt.Sprintf("The %s feed sent data we could not read. Showing the last known data.", malformed.Source)
	case errors.As(err, &network):
		return fmt.Sprintf("Could not reach the %s feed. Check your connection and try again.", network.Source)
	}
	return fmt.Sprintf("Failed to refresh data: %v", err)
}
