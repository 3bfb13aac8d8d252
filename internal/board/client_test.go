package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach_backend/internal/lifecycle"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/logger"
)

type testBoardConfig struct {
	baseURL string
}

func (c testBoardConfig) GetBoardBaseURL() string        { return c.baseURL }
func (c testBoardConfig) GetBoardToken() string          { return "test-token" }
func (c testBoardConfig) GetBoardSpaceID() string        { return "space1" }
func (c testBoardConfig) GetBoardTimeout() time.Duration { return 5 * time.Second }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(testBoardConfig{baseURL: server.URL}, logger.New("development"))
	return client, server
}

// fakeBoard is a minimal in-memory board API.
type fakeBoard struct {
	mux *http.ServeMux

	lists        []map[string]interface{}
	fields       map[string][]map[string]interface{}
	tasks        map[string][]map[string]interface{}
	createdIDs   int
	fieldQuota   bool
	statusDrift  bool
	schemaLocked bool
	putStatuses  []string
}

func newFakeBoard() *fakeBoard {
	f := &fakeBoard{
		mux:    http.NewServeMux(),
		fields: map[string][]map[string]interface{}{},
		tasks:  map[string][]map[string]interface{}{},
	}

	f.mux.HandleFunc("/space/space1/list", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]interface{}{"lists": f.lists})
			return
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.createdIDs++
		list := map[string]interface{}{
			"id":   fmt.Sprintf("list-%d", f.createdIDs),
			"name": body["name"],
		}
		f.lists = append(f.lists, list)
		json.NewEncoder(w).Encode(list)
	})

	f.mux.HandleFunc("/list/", func(w http.ResponseWriter, r *http.Request) {
		// Routes: PUT /list/{id}, GET|POST /list/{id}/field, GET /list/{id}/task, POST /list/{id}/task
		var listID, sub string
		fmt.Sscanf(r.URL.Path, "/list/%s", &listID)
		if i := indexByte(listID, '/'); i >= 0 {
			sub = listID[i+1:]
			listID = listID[:i]
		}

		switch {
		case sub == "" && r.Method == http.MethodPut:
			if f.schemaLocked {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"err":"Status not found","ECODE":"CRTSK_001"}`))
				return
			}
			f.putStatuses = append(f.putStatuses, listID)
			w.Write([]byte(`{}`))
		case sub == "field" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"fields": f.fields[listID]})
		case sub == "field" && r.Method == http.MethodPost:
			if f.fieldQuota {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"err":"custom field limit reached for plan","ECODE":"FIELD_014"}`))
				return
			}
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			f.createdIDs++
			field := map[string]interface{}{
				"id":   fmt.Sprintf("field-%d", f.createdIDs),
				"name": body["name"],
				"type": "text",
			}
			f.fields[listID] = append(f.fields[listID], field)
			json.NewEncoder(w).Encode(field)
		case sub == "task" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tasks":     f.tasks[listID],
				"last_page": true,
			})
		case sub == "task" && r.Method == http.MethodPost:
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if f.statusDrift {
				if _, hasStatus := body["status"]; hasStatus {
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(`{"err":"Status not found","ECODE":"CRTSK_001"}`))
					return
				}
			}
			f.createdIDs++
			task := map[string]interface{}{
				"id":          fmt.Sprintf("task-%d", f.createdIDs),
				"name":        body["name"],
				"description": body["description"],
			}
			if s, ok := body["status"]; ok {
				task["status"] = map[string]interface{}{"status": s}
			}
			f.tasks[listID] = append(f.tasks[listID], task)
			json.NewEncoder(w).Encode(task)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"err":"route not found"}`))
		}
	})

	f.mux.HandleFunc("/task/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	return f
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func TestGetOrCreateList_IsIdempotent(t *testing.T) {
	fake := newFakeBoard()
	client, _ := newTestClient(t, fake.mux)
	ctx := context.Background()

	first, err := client.GetOrCreateList(ctx, "ny")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Name != "LEADS-NY" {
		t.Fatalf("expected LEADS-NY, got %q", first.Name)
	}

	second, err := client.GetOrCreateList(ctx, "NY")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same list id, got %q and %q", first.ID, second.ID)
	}
	if len(fake.lists) != 1 {
		t.Fatalf("expected one list on the board, got %d", len(fake.lists))
	}
}

func TestGetOrCreateList_ProvisionsCanonicalFields(t *testing.T) {
	fake := newFakeBoard()
	client, _ := newTestClient(t, fake.mux)

	list, err := client.GetOrCreateList(context.Background(), "TX")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	for _, name := range CanonicalFields() {
		if !list.HasField(name) {
			t.Errorf("expected field %s to be provisioned", name)
		}
	}
}

func TestGetOrCreateList_FieldQuotaDegradesNotFails(t *testing.T) {
	fake := newFakeBoard()
	fake.fieldQuota = true
	client, _ := newTestClient(t, fake.mux)

	list, err := client.GetOrCreateList(context.Background(), "CA")
	if err != nil {
		t.Fatalf("quota exhaustion must not fail list creation: %v", err)
	}
	if list.HasField(FieldEmail) {
		t.Fatal("email field should be unavailable under quota")
	}
	if _, ok := list.Fields[FieldEmail]; !ok {
		t.Fatal("unavailable field should still be tracked")
	}
}

func TestGetOrCreateList_SchemaRejectionDegradesNotFails(t *testing.T) {
	fake := newFakeBoard()
	fake.schemaLocked = true
	client, _ := newTestClient(t, fake.mux)

	list, err := client.GetOrCreateList(context.Background(), "OR")
	if err != nil {
		t.Fatalf("schema rejection must not fail list creation: %v", err)
	}
	if list.ID == "" {
		t.Fatal("expected a usable list")
	}
	for _, raw := range list.Statuses {
		if s, ok := lifecycle.Parse(raw); ok && s == lifecycle.StatusReady {
			t.Fatal("rejected schema must not be recorded as applied")
		}
	}
	for _, name := range CanonicalFields() {
		if !list.HasField(name) {
			t.Errorf("field provisioning should proceed despite schema rejection, missing %s", name)
		}
	}
}

func TestCreateTask_FallsBackOnStatusDrift(t *testing.T) {
	fake := newFakeBoard()
	fake.statusDrift = true
	client, _ := newTestClient(t, fake.mux)
	ctx := context.Background()

	list, err := client.GetOrCreateList(ctx, "FL")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	lead := Lead{Name: "Sunny Dental", Email: "info@sunnydental.com", Website: "sunnydental.com"}
	task, err := client.CreateTask(ctx, list, lead)
	if err != nil {
		t.Fatalf("create should survive status drift: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected a task id")
	}
	if ExtractEmail(task.Description) != "info@sunnydental.com" {
		t.Fatalf("description must carry the labelled email, got %q", task.Description)
	}
}

func TestCreateTask_FallsBackOnBothDriftAndQuota(t *testing.T) {
	fake := newFakeBoard()
	fake.statusDrift = true
	fake.fieldQuota = true
	client, _ := newTestClient(t, fake.mux)
	ctx := context.Background()

	list, err := client.GetOrCreateList(ctx, "WA")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	task, err := client.CreateTask(ctx, list, Lead{Name: "Rainy Dental", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("create should survive combined fallbacks: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected a task id")
	}
}

func TestMoveStatus_SwallowsSchemaConflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/task/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"err":"Status not found","ECODE":"CRTSK_001"}`))
	})
	client, _ := newTestClient(t, mux)

	if err := client.MoveStatus(context.Background(), "task-1", lifecycle.StatusSent); err != nil {
		t.Fatalf("schema conflict on move must be swallowed, got %v", err)
	}
}

func TestMoveStatus_PropagatesTransientErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/task/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := newTestClient(t, mux)

	err := client.MoveStatus(context.Background(), "task-1", lifecycle.StatusSent)
	if !apperr.Is(err, apperr.KindTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestListTasks_FollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list/list-1/task", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "0":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tasks":     []map[string]interface{}{{"id": "t1", "name": "A", "status": "NEW"}},
				"last_page": false,
			})
		case "1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tasks":     []map[string]interface{}{{"id": "t2", "name": "B", "status": map[string]string{"status": "ready"}}},
				"last_page": true,
			})
		default:
			t.Errorf("unexpected page %q", page)
		}
	})
	client, _ := newTestClient(t, mux)

	tasks, err := client.ListTasks(context.Background(), List{ID: "list-1"})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks across pages, got %d", len(tasks))
	}
	if tasks[0].Status != lifecycle.StatusNew || tasks[1].Status != lifecycle.StatusReady {
		t.Fatalf("statuses not parsed: %+v", tasks)
	}
}

func TestFindTaskByEmail_MatchesDescriptionFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/space/space1/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"lists": []map[string]interface{}{{"id": "list-1", "name": "LEADS-NY"}},
		})
	})
	mux.HandleFunc("/list/list-1/field", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"fields": []interface{}{}})
	})
	mux.HandleFunc("/list/list-1/task", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []map[string]interface{}{
				{"id": "t1", "name": "Smile Dental", "status": "SENT", "description": "Email: reply@smile.com"},
			},
			"last_page": true,
		})
	})
	client, _ := newTestClient(t, mux)

	ref, err := client.FindTaskByEmail(context.Background(), "REPLY@smile.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ref == nil {
		t.Fatal("expected a match via description parsing")
	}
	if ref.TaskID != "t1" || ref.ClinicName != "Smile Dental" || ref.Status != lifecycle.StatusSent {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	none, err := client.FindTaskByEmail(context.Background(), "unknown@nowhere.com")
	if err != nil {
		t.Fatalf("find unknown: %v", err)
	}
	if none != nil {
		t.Fatal("unknown sender must return nil, nil")
	}
}

func TestMapError_Taxonomy(t *testing.T) {
	cases := []struct {
		status int
		body   string
		kind   apperr.Kind
	}{
		{404, `{"err":"List not found"}`, apperr.KindNotFound},
		{429, `{"err":"rate limited"}`, apperr.KindTransient},
		{500, `{"err":"boom"}`, apperr.KindTransient},
		{400, `{"err":"Status not found","ECODE":"CRTSK_001"}`, apperr.KindSchemaConflict},
		{400, `{"err":"custom field limit reached","ECODE":"FIELD_014"}`, apperr.KindQuotaExceeded},
		{400, `{"err":"something else"}`, apperr.KindBadRequest},
	}

	for _, tc := range cases {
		mux := http.NewServeMux()
		status, body := tc.status, tc.body
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(body))
		})
		client, _ := newTestClient(t, mux)

		err := client.do(context.Background(), "GET", "/anything", nil, nil)
		if !apperr.Is(err, tc.kind) {
			t.Errorf("status %d body %s: expected kind %v, got %v (err=%v)",
				tc.status, tc.body, tc.kind, apperr.GetKind(err), err)
		}
	}
}
