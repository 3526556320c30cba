package jointree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ridoystarlord/reportmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape struct {
	Name     string
	Children []shape
}

func shapeOf(n *Node) shape {
	s := shape{Name: n.Name()}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

func join(on, with, withOn string) schema.JoinEdge {
	return schema.JoinEdge{On: on, JoinWith: with, JoinWithOn: withOn}
}

// dashboardSpecs mirrors the dashboard report: users with four children, one
// of which has a child of its own, plus a second master.
func dashboardSpecs() []schema.TableSpec {
	return []schema.TableSpec{
		{
			Name:    "users",
			Columns: []string{"id", "created_at"},
			Master:  true,
			Joins: []schema.JoinEdge{
				join("id", "profile", "user_id"),
				join("id", "user_given_to", "user_id"),
				join("id", "facebookuser", "user_id"),
				join("id", "twitteruser", "user_id"),
			},
		},
		{
			Name:    "profile",
			Columns: []string{"user_id", "age", "country_id"},
			Joins:   []schema.JoinEdge{join("country_id", "country", "id")},
		},
		{Name: "user_given_to", Columns: []string{"user_id", "given_to"}},
		{Name: "facebookuser", Columns: []string{"user_id", "facebook_id"}},
		{Name: "twitteruser", Columns: []string{"user_id", "twitter_id"}},
		{Name: "country", Columns: []string{"id", "name"}},
		{
			Name:    "privacy",
			Columns: []string{"id", "policy_id"},
			Master:  true,
			Joins:   []schema.JoinEdge{join("policy_id", "policy", "id")},
		},
		{Name: "policy", Columns: []string{"id", "version"}},
	}
}

func TestBuild_Shape(t *testing.T) {
	trees, err := Build(dashboardSpecs())
	require.NoError(t, err)
	require.Len(t, trees, 2)

	want := shape{Name: "users", Children: []shape{
		{Name: "profile", Children: []shape{{Name: "country"}}},
		{Name: "user_given_to"},
		{Name: "facebookuser"},
		{Name: "twitteruser"},
	}}
	if diff := cmp.Diff(want, shapeOf(trees[0].Root)); diff != "" {
		t.Errorf("users tree mismatch (-want +got):\n%s", diff)
	}

	want = shape{Name: "privacy", Children: []shape{{Name: "policy"}}}
	if diff := cmp.Diff(want, shapeOf(trees[1].Root)); diff != "" {
		t.Errorf("privacy tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_TreeCountEqualsMasters(t *testing.T) {
	specs := dashboardSpecs()
	masters := 0
	for _, s := range specs {
		if s.Master {
			masters++
		}
	}

	trees, err := Build(specs)
	require.NoError(t, err)
	assert.Len(t, trees, masters)
	for i, tree := range trees {
		assert.True(t, tree.Root.Spec.Master, "tree %d root must be a master", i)
	}
}

func TestBuild_LookupAndTables(t *testing.T) {
	trees, err := Build(dashboardSpecs())
	require.NoError(t, err)
	users := trees[0]

	assert.Equal(t, "users", users.Name())
	assert.Equal(t,
		[]string{"users", "profile", "country", "user_given_to", "facebookuser", "twitteruser"},
		users.Tables())

	country, ok := users.Lookup("country")
	require.True(t, ok)
	assert.True(t, country.IsLeaf())

	profile, ok := users.Lookup("profile")
	require.True(t, ok)
	assert.Same(t, country, profile.Children[0])

	for _, c := range users.Root.Children {
		assert.NotEqual(t, "country", c.Name(), "country must hang under profile, not users")
	}

	_, ok = users.Lookup("policy")
	assert.False(t, ok)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	specs := dashboardSpecs()
	before := dashboardSpecs()

	_, err := Build(specs)
	require.NoError(t, err)
	if diff := cmp.Diff(before, specs); diff != "" {
		t.Errorf("Build changed its input (-before +after):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(dashboardSpecs())
	require.NoError(t, err)
	second, err := Build(dashboardSpecs())
	require.NoError(t, err)

	for i := range first {
		if diff := cmp.Diff(shapeOf(first[i].Root), shapeOf(second[i].Root)); diff != "" {
			t.Errorf("tree %d differs between builds:\n%s", i, diff)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []schema.TableSpec
		want  error
	}{
		{
			name: "unknown target",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("id", "ghost", "user_id")}},
			},
			want: ErrUnknownJoinTarget,
		},
		{
			name: "edge to another master",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("id", "orders", "user_id")}},
				{Name: "orders", Master: true},
			},
			want: ErrUnknownJoinTarget,
		},
		{
			name: "shared table across masters",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("country_id", "country", "id")}},
				{Name: "leads", Master: true, Joins: []schema.JoinEdge{join("country_id", "country", "id")}},
				{Name: "country"},
			},
			want: ErrDuplicateTableConsumption,
		},
		{
			name: "diamond inside one tree",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{
					join("id", "profile", "user_id"),
					join("id", "address", "user_id"),
				}},
				{Name: "profile", Joins: []schema.JoinEdge{join("country_id", "country", "id")}},
				{Name: "address", Joins: []schema.JoinEdge{join("country_id", "country", "id")}},
				{Name: "country"},
			},
			want: ErrDuplicateTableConsumption,
		},
		{
			name: "cycle between non-masters",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("id", "a", "user_id")}},
				{Name: "a", Joins: []schema.JoinEdge{join("b_id", "b", "id")}},
				{Name: "b", Joins: []schema.JoinEdge{join("a_id", "a", "id")}},
			},
			want: ErrJoinCycle,
		},
		{
			name: "edge back to the master",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("id", "a", "user_id")}},
				{Name: "a", Joins: []schema.JoinEdge{join("user_id", "users", "id")}},
			},
			want: ErrUnknownJoinTarget,
		},
		{
			name: "master joins itself",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("manager_id", "users", "id")}},
			},
			want: ErrUnknownJoinTarget,
		},
		{
			name: "non-master joins itself",
			specs: []schema.TableSpec{
				{Name: "users", Master: true, Joins: []schema.JoinEdge{join("id", "a", "user_id")}},
				{Name: "a", Joins: []schema.JoinEdge{join("parent_id", "a", "id")}},
			},
			want: ErrJoinCycle,
		},
		{
			name: "duplicate names",
			specs: []schema.TableSpec{
				{Name: "users", Master: true},
				{Name: "users"},
			},
			want: ErrDuplicateTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trees, err := Build(tt.specs)
			require.Error(t, err)
			assert.Nil(t, trees)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestBuild_NoMasters(t *testing.T) {
	trees, err := Build([]schema.TableSpec{{Name: "country"}})
	require.NoError(t, err)
	assert.Empty(t, trees)
}

func TestUnreachable(t *testing.T) {
	specs := append(dashboardSpecs(), schema.TableSpec{Name: "orphan"})
	trees, err := Build(specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan"}, Unreachable(specs, trees))
	assert.Empty(t, Unreachable(dashboardSpecs(), trees))
}
