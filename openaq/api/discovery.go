package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// SearchLocations looks up monitoring locations by name.
func (client *Client) SearchLocations(ctx context.Context, name string) ([]Location, error) {
	client.log(slog.LevelInfo, "Searching for locations", "name", name)

	query := url.Values{}
	query.Set("name", name)

	var payload locationsResponse
	if err := client.getJSON(ctx, "/locations", query, &payload); err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	return payload.Results, nil
}

// FetchLocationSensors lists the sensors of a location by its ID.
func (client *Client) FetchLocationSensors(ctx context.Context, locationID int64) ([]Sensor, error) {
	client.log(slog.LevelInfo, "Fetching location sensors", "location_id", locationID)

	var payload sensorsResponse
	path := fmt.Sprintf("/locations/%d/sensors", locationID)
	if err := client.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch sensors for location %d: %w", locationID, err)
	}

	return payload.Results, nil
}
