package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/validation"
)

func TestApplySingletonPatch(t *testing.T) {
	env := setupLoadedService(t)
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		kind    string
		payload string
	}{
		{name: "settings", kind: models.KindSettings, payload: `{"siteTitle":"New Title"}`},
		{name: "contact", kind: models.KindContact, payload: `{"location":"Berlin","published":true}`},
		{name: "unknown field", kind: models.KindProfile, payload: `{"nickname":"x"}`, wantErr: ErrInvalidPayload},
		{name: "wrong type", kind: models.KindProfile, payload: `{"name":42}`, wantErr: ErrInvalidPayload},
		{name: "trailing data", kind: models.KindAbout, payload: `{"headline":"a"} {}`, wantErr: ErrInvalidPayload},
		{name: "collection kind", kind: models.KindProjects, payload: `{}`, wantErr: ErrUnknownKind},
		{name: "unknown kind", kind: "blog", payload: `{}`, wantErr: ErrUnknownKind},
		{
			name:    "schema violation",
			kind:    models.KindSettings,
			payload: `{"socialLinks":{"github":1}}`,
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := env.svc.ApplySingletonPatch(ctx, tt.kind, []byte(tt.payload))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}

	snap := env.svc.Snapshot()
	assert.Equal(t, "New Title", snap.Portfolio.Settings.SiteTitle)
	assert.Equal(t, "Berlin", snap.Portfolio.Contact.Location)
}

func TestRowJSON(t *testing.T) {
	env := setupLoadedService(t)
	ctx := context.Background()

	v, err := env.svc.AddRowJSON(ctx, models.KindSkills, []byte(`{"category":"Tools","skills":[{"name":"Make","proficiency":60}]}`))
	require.NoError(t, err)
	added, ok := v.(models.SkillCategory)
	require.True(t, ok)
	assert.Equal(t, "Tools", added.Category)

	_, err = env.svc.AddRowJSON(ctx, models.KindSkills, []byte(`{"skills":[{"name":"Make","proficiency":101}]}`))
	assert.ErrorIs(t, err, validation.ErrInvalidDocument)

	v, err = env.svc.UpdateRowJSON(ctx, models.KindSkills, added.ID, []byte(`{"category":"Build Tools"}`))
	require.NoError(t, err)
	assert.Equal(t, "Build Tools", v.(models.SkillCategory).Category)

	_, err = env.svc.UpdateRowJSON(ctx, models.KindSettings, "main", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	ids := []string{added.ID, "cat1", "cat2", "cat3", "cat4", "cat5", "cat6"}
	v, err = env.svc.ReorderRowsByKind(ctx, models.KindSkills, ids)
	require.NoError(t, err)
	rows := v.([]models.SkillCategory)
	assert.Equal(t, added.ID, rows[0].ID)

	require.NoError(t, env.svc.DeleteRowByKind(ctx, models.KindSkills, added.ID))
	assert.ErrorIs(t, env.svc.DeleteRowByKind(ctx, "blog", "x"), ErrUnknownKind)
}

func TestSection(t *testing.T) {
	env := setupLoadedService(t)
	p := env.svc.Snapshot().Portfolio

	for _, kind := range append(append([]string{}, models.SingletonKinds...), models.CollectionKinds...) {
		v, err := Section(p, kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, v, kind)
	}

	_, err := Section(p, "blog")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
