package portability

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/handlers"
	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

func testCollection(t *testing.T) *Collection {
	t.Helper()
	store, err := fixture.NewStore(nil)
	require.NoError(t, err)
	schemas := validation.MustNew()
	r := router.New("/api", schemas, nil)
	handlers.New(handlers.Options{Store: store}).Register(r)
	return &Collection{Routes: FromRouter(r), Schemas: schemas, ServerURL: "http://localhost:8090"}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"openapi", FormatOpenAPI, false},
		{" OAS3 ", FormatOpenAPI, false},
		{"routes", FormatRoutes, false},
		{"postman", FormatUnknown, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []Format{FormatOpenAPI, FormatRoutes}, ListFormats())
	assert.NotNil(t, GetExporter(FormatOpenAPI))
	assert.Nil(t, GetExporter(FormatUnknown))
}

func TestOpenAPIExport_ValidDocument(t *testing.T) {
	c := testCollection(t)
	data, err := (&OpenAPIExporter{}).Export(c)
	require.NoError(t, err)

	doc, err := openapi3.NewLoader().LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, DefaultTitle, doc.Info.Title)
	assert.Equal(t, "http://localhost:8090", doc.Servers[0].URL)
	assert.Equal(t, len(c.Routes), countOperations(doc))

	item := doc.Paths.Value("/api/users/{id}")
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	assert.Equal(t, "users.get", item.Get.OperationID)
	assert.Equal(t, "id", item.Get.Parameters[0].Value.Name)
	assert.NotNil(t, item.Get.Responses.Value("404"))

	stats := doc.Paths.Value("/api/servers/stats")
	require.NotNil(t, stats)
	assert.Equal(t, "servers.stats", stats.Get.OperationID)
}

func TestOpenAPIExport_BodySchemas(t *testing.T) {
	doc, err := (&OpenAPIExporter{}).Build(testCollection(t))
	require.NoError(t, err)

	create := doc.Paths.Value("/api/users").Post
	require.NotNil(t, create.RequestBody)
	body := create.RequestBody.Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/user.create", body.Ref)
	assert.True(t, create.RequestBody.Value.Required)

	// Create schemas extend the update schema.
	userCreate := doc.Components.Schemas["user.create"].Value
	require.Len(t, userCreate.AllOf, 1)
	assert.Equal(t, "#/components/schemas/user.update", userCreate.AllOf[0].Ref)

	update := doc.Components.Schemas["user.update"].Value
	expire := update.Properties["expireAt"].Value
	assert.True(t, expire.Nullable)
	assert.True(t, expire.Type.Is(openapi3.TypeString))
	assert.Equal(t, []any{"admin", "user"}, update.Properties["role"].Value.Enum)

	assert.Contains(t, doc.Components.Schemas, "ReplyA")
	assert.Contains(t, doc.Components.Schemas, "ReplyB")

	login := doc.Paths.Value("/api/auth/login").Post
	ok := login.Responses.Status(200).Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/ReplyB", ok.Ref)
}

func TestOpenAPIExport_YAML(t *testing.T) {
	data, err := (&OpenAPIExporter{AsYAML: true}).Export(testCollection(t))
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, yaml.Unmarshal(data, &tree))
	assert.Equal(t, "3.0.3", tree["openapi"])
	assert.Contains(t, tree["paths"], "/api/users/{id}")
}

func TestRoutesExport(t *testing.T) {
	c := testCollection(t)

	data, err := (&RoutesExporter{AsJSON: true}).Export(c)
	require.NoError(t, err)
	var table struct {
		Routes []router.RouteInfo `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(data, &table))
	require.Len(t, table.Routes, len(c.Routes))
	assert.Equal(t, c.Routes[0], table.Routes[0])

	_, err = (&RoutesExporter{}).Export(nil)
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, FormatRoutes, exportErr.Format)
}

func TestConvertPath(t *testing.T) {
	assert.Equal(t, "/api/users/{id}/enable", convertPath("/api/users/:id/enable"))
	assert.Equal(t, []string{"provider"}, pathParams("/api/auth/oauth2/:provider/callback"))
	assert.Equal(t, "user.update", refName("user.update.json"))
}

func countOperations(doc *openapi3.T) int {
	n := 0
	for _, item := range doc.Paths.Map() {
		n += len(item.Operations())
	}
	return n
}

func TestExport_Options(t *testing.T) {
	c := testCollection(t)
	yes, no := true, false

	data, err := Export(c, nil)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	data, err = Export(c, &ExportOptions{Format: FormatRoutes})
	require.NoError(t, err)
	assert.False(t, json.Valid(data))
	assert.Contains(t, string(data), "routes:")

	data, err = Export(c, &ExportOptions{Format: FormatRoutes, AsYAML: &no})
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	data, err = Export(c, &ExportOptions{Format: FormatOpenAPI, AsYAML: &yes})
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")

	_, err = Export(c, &ExportOptions{Format: "postman"})
	assert.Error(t, err)
}
