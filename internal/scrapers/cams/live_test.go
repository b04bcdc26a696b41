package cams

import (
	"context"
	"testing"
	"time"

	devenv "cams-catalog/dev/env"
	"cams-catalog/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// TestLivePortal scrapes the real portal, it only runs when
// <dev_state>/cams_config.json5 exists.
func TestLivePortal(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.PortalTestConfig]("cams_config.json5")
	if err != nil {
		t.Skip("no live portal config:", err)
	}

	client, err := NewClient(ClientOptions{BaseUrl: config.BaseUrl}, telemetry.NewTestingAPI(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*5)
	defer cancel()

	terms, err := client.FetchTerms(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, terms)

	term := config.Term
	if term == "" {
		latest, _ := terms.Latest()
		term = latest.Id
	}

	courses, err := client.ScrapeCourses(ctx, config.Username, config.Password, term)
	require.NoError(t, err)
	require.Greater(t, len(courses), 0)
	for _, course := range courses {
		require.NotEmpty(t, course.Department)
		require.NotEmpty(t, course.Sections)
	}
}
