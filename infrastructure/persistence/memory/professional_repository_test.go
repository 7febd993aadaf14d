package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

func seed() []*entities.Professional {
	return []*entities.Professional{
		{ID: "1", PersonalInfo: entities.PersonalInfo{Name: "张三"}, ProfessionalInfo: entities.ProfessionalInfo{Affiliation: "Peking Union"}},
		{ID: "2", PersonalInfo: entities.PersonalInfo{Name: "李四"}, ProfessionalInfo: entities.ProfessionalInfo{Title: "Chief Physician"}},
		{ID: "3", PersonalInfo: entities.PersonalInfo{Name: "王五"}, AcademicInfo: entities.AcademicInfo{ResearchInterests: []string{"Deep Learning"}}},
	}
}

func TestProfessionalRepository_List(t *testing.T) {
	repo, err := NewProfessionalRepository(seed()...)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name        string
		limit, skip int
		want        []string
	}{
		{"first page", 2, 0, []string{"1", "2"}},
		{"second page", 2, 2, []string{"3"}},
		{"past the end", 2, 5, []string{}},
		{"no limit", 0, 1, []string{"2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.limit, tt.skip)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range list {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestProfessionalRepository_Search(t *testing.T) {
	repo, err := NewProfessionalRepository(seed()...)
	require.NoError(t, err)
	ctx := context.Background()

	for q, want := range map[string]string{"peking": "1", "chief": "2", "deep learning": "3", "王五": "3"} {
		list, err := repo.Search(ctx, q, 20)
		require.NoError(t, err)
		require.Len(t, list, 1, q)
		assert.Equal(t, want, list[0].ID, q)
	}

	list, err := repo.Search(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProfessionalRepository_GetAndSave(t *testing.T) {
	repo, err := NewProfessionalRepository(seed()...)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	p, err := repo.GetByID(ctx, "3")
	require.NoError(t, err)
	p.AcademicInfo.ResearchInterests[0] = "mutated"

	again, err := repo.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Deep Learning", again.AcademicInfo.ResearchInterests[0])

	again.PersonalInfo.Name = "王五五"
	require.NoError(t, repo.Save(ctx, again))
	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "王五五", all[2].PersonalInfo.Name)

	assert.True(t, pkgerrors.IsValidation(repo.Save(ctx, &entities.Professional{ID: "interest-AI"})))
	assert.True(t, pkgerrors.IsValidation(repo.Save(ctx, &entities.Professional{})))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"_id": "a1", "personal_info": {"name": "张三"}, "academic_info": {"research_interests": ["AI", " 心血管 "]}}
	]`), 0o600))

	list, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, []string{"AI", "心血管"}, list[0].ResearchInterests())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
