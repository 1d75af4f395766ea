package dashboard_test

import (
	"testing"

	"github.com/dalemusser/pastoralhub/internal/app/features/dashboard"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInputs() dashboard.Inputs {
	return dashboard.Inputs{
		Communities: []models.Community{{ID: "matriz", Name: "Santa Rita"}, {ID: "sao_jose", Name: "São José"}},
		Members: []models.Member{
			{ID: "a", CommunityID: "matriz", Status: models.StatusActive},
			{ID: "b", CommunityID: "matriz", Status: models.StatusActive, IsActive: models.Bool(true)},
			{ID: "c", CommunityID: "matriz", Status: models.StatusActive, IsActive: models.Bool(false)},
			{ID: "d", CommunityID: "sao_jose", Status: models.StatusPendingDeletion},
			{ID: "e", CommunityID: "sao_jose", Status: models.StatusActive},
		},
		Teams:     []models.Team{{ID: "t1"}, {ID: "t2"}},
		Trainings: []models.SoundTraining{{ID: "s1"}},
		Users: []models.User{
			{ID: "u1", Status: models.StatusActive},
			{ID: "u2", Status: models.StatusPendingDeletion},
		},
	}
}

func TestSummarize_Liturgy(t *testing.T) {
	s := dashboard.Summarize(models.ModuleLiturgy, sampleInputs())

	assert.Equal(t, 3, s.ActiveMembers)
	assert.Equal(t, 2, s.Communities)
	assert.Equal(t, 1, s.SoundTrainings)
	require.NotNil(t, s.Teams)
	assert.Equal(t, 2, *s.Teams)
	assert.Equal(t, []dashboard.CommunityCount{
		{CommunityID: "matriz", Name: "Santa Rita", Members: 2},
		{CommunityID: "sao_jose", Name: "São José", Members: 1},
	}, s.PerCommunity)
	assert.Nil(t, s.PendingQueue)
}

func TestSummarize_EducationHasNoTeams(t *testing.T) {
	s := dashboard.Summarize(models.ModuleEducation, sampleInputs())

	assert.Nil(t, s.Teams)
	assert.Equal(t, 1, s.SoundTrainings)
}

func TestSummarize_QueueForMaster(t *testing.T) {
	in := sampleInputs()
	in.IncludeQueue = true

	s := dashboard.Summarize(models.ModuleLiturgy, in)

	require.NotNil(t, s.PendingQueue)
	assert.Equal(t, 2, *s.PendingQueue)
}

func TestSummarize_Empty(t *testing.T) {
	s := dashboard.Summarize(models.ModuleLiturgy, dashboard.Inputs{})

	assert.Zero(t, s.ActiveMembers)
	assert.NotNil(t, s.PerCommunity)
	assert.Empty(t, s.PerCommunity)
}
