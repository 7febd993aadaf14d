package dynamodb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profnet/domain/core/entities"
	pkgerrors "profnet/pkg/errors"
)

// fakeClient keeps items in insertion order and serves scans in pages of
// pageSize so pagination is exercised.
type fakeClient struct {
	mu       sync.Mutex
	keys     []string
	items    map[string]map[string]types.AttributeValue
	pageSize int
	scans    int
	failScan bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue), pageSize: 2}
}

func pk(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[pk(in.Key)]}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pk(in.Item)
	if _, ok := f.items[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.failScan {
		return nil, errors.New("throttled")
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		last := pk(in.ExclusiveStartKey)
		for i, k := range f.keys {
			if k == last {
				start = i + 1
			}
		}
	}
	end := start + f.pageSize
	if end > len(f.keys) {
		end = len(f.keys)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range f.keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(f.keys) {
		out.LastEvaluatedKey = professionalKey(f.keys[end-1][len("PROFESSIONAL#"):])
	}
	return out, nil
}

func seededRepo(t *testing.T) (*ProfessionalRepository, *fakeClient) {
	t.Helper()
	client := newFakeClient()
	repo := NewProfessionalRepository(client, "profnet", zap.NewNop())
	for _, p := range []*entities.Professional{
		{ID: "p1", PersonalInfo: entities.PersonalInfo{Name: "张伟"}, AcademicInfo: entities.AcademicInfo{ResearchInterests: []string{"AI"}}},
		{ID: "p2", PersonalInfo: entities.PersonalInfo{Name: "李娜"}, ProfessionalInfo: entities.ProfessionalInfo{Affiliation: "Tsinghua"}},
		{ID: "p3", PersonalInfo: entities.PersonalInfo{Name: "王芳"}, AcademicInfo: entities.AcademicInfo{ResearchInterests: []string{"Graph AI"}}},
		{ID: "p4", PersonalInfo: entities.PersonalInfo{Name: "赵强"}},
		{ID: "p5", PersonalInfo: entities.PersonalInfo{Name: "陈静"}},
	} {
		require.NoError(t, repo.Save(context.Background(), p))
	}
	return repo, client
}

func ids(list []*entities.Professional) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestProfessionalRepository_SaveAndGet(t *testing.T) {
	repo, client := seededRepo(t)

	stored := client.items["PROFESSIONAL#p2"]
	assert.Equal(t, &types.AttributeValueMemberS{Value: "PROFESSIONAL"}, stored["EntityType"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "李娜\ntsinghua\n"}, stored["SearchText"])

	got, err := repo.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "李娜", got.Name())
	assert.Equal(t, "Tsinghua", got.Affiliation())
}

func TestProfessionalRepository_GetMissing(t *testing.T) {
	repo, _ := seededRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestProfessionalRepository_SaveRejectsInvalid(t *testing.T) {
	repo, client := seededRepo(t)

	err := repo.Save(context.Background(), &entities.Professional{ID: "interest-AI"})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Len(t, client.keys, 5)
}

func TestProfessionalRepository_ListPaginates(t *testing.T) {
	repo, client := seededRepo(t)

	page, err := repo.List(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, ids(page))
	assert.Equal(t, 2, client.scans, "stops scanning once the page is full")

	all, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, ids(all))
}

func TestProfessionalRepository_Search(t *testing.T) {
	repo, _ := seededRepo(t)

	found, err := repo.Search(context.Background(), " ai ", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids(found))

	found, err = repo.Search(context.Background(), "ai", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(found))
}

func TestProfessionalRepository_ScanFailure(t *testing.T) {
	repo, client := seededRepo(t)
	client.failScan = true

	_, err := repo.All(context.Background())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}
