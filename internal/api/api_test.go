package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ksaphier/trainerapp/internal/config"
	"ksaphier/trainerapp/internal/domain"
	"ksaphier/trainerapp/internal/repository/memory"
	"ksaphier/trainerapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const frontendOrigin = "http://192.168.1.17:5173"

type testServer struct {
	router *gin.Engine
	raw    *memory.Store
}

func newTestServer(t *testing.T, loginPerMinute, loginBurst int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw := memory.New()
	store := raw.Repositories()
	log := zap.NewNop()

	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log), CORS(config.CORSConfig{
		AllowedOrigins: []string{frontendOrigin},
		MaxAge:         time.Hour,
	}))
	SetupRoutes(router, log, Services{
		Auth:             service.NewAuthService(store.Users, "api-test-secret", time.Hour, "trainerapp"),
		Exercises:        service.NewExerciseService(store, nil, log),
		Muscles:          service.NewMuscleService(store),
		Workouts:         service.NewWorkoutService(store),
		WorkoutExercises: service.NewWorkoutExerciseService(store),
	}, NewRateLimiter(loginPerMinute, loginBurst, log))

	return &testServer{router: router, raw: raw}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	creds := gin.H{"username": username, "password": "pa55word"}
	w := s.do(t, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Body.String()
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, 100, 100)
	creds := gin.H{"username": "alice", "password": "pa55word"}

	w := s.do(t, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User registered successfully", w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/register", creds, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/auth/register", gin.H{"username": "bob"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", gin.H{"username": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, 1, 2)
	bad := gin.H{"username": "ghost", "password": "x"}

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/auth/login", bad, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := s.do(t, http.MethodPost, "/auth/login", bad, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// registration is not limited
	w = s.do(t, http.MethodPost, "/auth/register", gin.H{"username": "ghost", "password": "x"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkoutsRequireToken(t *testing.T) {
	s := newTestServer(t, 100, 100)

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"malformed", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/workouts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
		})
	}

	w := s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkoutOwnershipFromToken(t *testing.T) {
	s := newTestServer(t, 100, 100)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	// a client-supplied owner is ignored
	w := s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day", "userId": 999}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[domain.Workout](t, w)
	assert.NotEqual(t, int64(999), created.UserID)

	w = s.do(t, http.MethodGet, "/workouts", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]domain.Workout](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	w = s.do(t, http.MethodGet, "/workouts", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.Workout](t, w))
}

func TestLegDayOverHTTP(t *testing.T) {
	s := newTestServer(t, 100, 100)
	token := s.login(t, "lifter")

	w := s.do(t, http.MethodPost, "/exercises", gin.H{"name": "Squat"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	squat := decode[domain.Exercise](t, w)

	w = s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	workout := decode[domain.Workout](t, w)

	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{
		"workoutId": workout.ID, "exerciseId": squat.ID,
		"series": 3, "reps": 10, "rest": 60, "weight": 80,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	link := decode[domain.WorkoutExercise](t, w)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/workouts/%d/details", workout.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var details struct {
		Details struct {
			Name string `json:"name"`
		} `json:"details"`
		Exercises []struct {
			ID     int64  `json:"id"`
			Name   string `json:"name"`
			Series int    `json:"series"`
			Reps   int    `json:"reps"`
			Rest   int    `json:"rest"`
			Weight int    `json:"weight"`
		} `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "Leg Day", details.Details.Name)
	require.Len(t, details.Exercises, 1)
	e := details.Exercises[0]
	assert.Equal(t, link.ID, e.ID)
	assert.Equal(t, "Squat", e.Name)
	assert.Equal(t, []int{3, 10, 60, 80}, []int{e.Series, e.Reps, e.Rest, e.Weight})

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/workouts/deleteExercise/%d", link.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/workouts/deleteExercise/%d", link.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddExerciseErrors(t *testing.T) {
	s := newTestServer(t, 100, 100)
	token := s.login(t, "lifter")

	w := s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	workout := decode[domain.Workout](t, w)

	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": workout.ID, "exerciseId": 404}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": 404, "exerciseId": 1}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// a missing or zero id is a malformed body, not an unknown row
	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": workout.ID}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": 0, "exerciseId": 5}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": workout.ID, "exerciseId": 1, "reps": -3}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteWorkoutCascadeOverHTTP(t *testing.T) {
	s := newTestServer(t, 100, 100)
	token := s.login(t, "lifter")

	w := s.do(t, http.MethodPost, "/exercises", gin.H{"name": "Squat"}, "")
	squat := decode[domain.Exercise](t, w)
	w = s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day"}, token)
	workout := decode[domain.Workout](t, w)
	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": workout.ID, "exerciseId": squat.ID, "series": 1}, "")
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/workouts/%d", workout.ID)
	w = s.do(t, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, path+"/details", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExerciseAndMuscleRoutes(t *testing.T) {
	s := newTestServer(t, 100, 100)

	w := s.do(t, http.MethodPost, "/exercises", gin.H{"description": "no name"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/exercises", gin.H{"name": "Squat", "description": "legs"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	squat := decode[domain.Exercise](t, w)

	w = s.do(t, http.MethodPost, "/muscles", gin.H{"name": "Quadriceps"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	quads := decode[domain.Muscle](t, w)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/muscles/by-exercise/%d", squat.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf("/exercises/%d/muscles/%d", squat.ID, quads.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/muscles/by-exercise/%d", squat.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	linked := decode[[]domain.Muscle](t, w)
	require.Len(t, linked, 1)
	assert.Equal(t, quads.ID, linked[0].ID)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/muscles/%d", quads.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/exercises/%d", squat.ID), gin.H{"name": "Back Squat"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Back Squat", decode[domain.Exercise](t, w).Name)

	w = s.do(t, http.MethodPut, "/exercises/999", gin.H{"name": "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/exercises/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/exercises?name=Back%20Squat", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Exercise](t, w), 1)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/exercises/%d", squat.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/exercises/%d", squat.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/muscles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Muscle](t, w), 1, "muscles survive exercise delete")
}

func TestMediaRoutesWithoutBucket(t *testing.T) {
	s := newTestServer(t, 100, 100)
	w := s.do(t, http.MethodPost, "/exercises", gin.H{"name": "Squat"}, "")
	squat := decode[domain.Exercise](t, w)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/exercises/%d/media/upload-url", squat.ID), gin.H{"contentType": "video/mp4"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/exercises/%d/media", squat.ID), nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDanglingReferenceIsServerFault(t *testing.T) {
	s := newTestServer(t, 100, 100)
	token := s.login(t, "lifter")

	w := s.do(t, http.MethodPost, "/exercises", gin.H{"name": "Squat"}, "")
	squat := decode[domain.Exercise](t, w)
	w = s.do(t, http.MethodPost, "/workouts", gin.H{"name": "Leg Day"}, token)
	workout := decode[domain.Workout](t, w)
	w = s.do(t, http.MethodPost, "/workouts/addExercise", gin.H{"workoutId": workout.ID, "exerciseId": squat.ID}, "")
	require.Equal(t, http.StatusOK, w.Code)

	s.raw.RemoveExerciseRow(squat.ID)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/workouts/%d/details", workout.ID), nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatusForError(t *testing.T) {
	cases := map[error]int{
		service.ErrWorkoutNotFound:    http.StatusNotFound,
		service.ErrValidationFailed:   http.StatusBadRequest,
		service.ErrUserAlreadyExists:  http.StatusConflict,
		service.ErrTokenExpired:       http.StatusUnauthorized,
		service.ErrStorageUnavailable: http.StatusServiceUnavailable,
		service.ErrDanglingReference:  http.StatusInternalServerError,
		errors.New("db down"):         http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusForError(err), err.Error())
	}
}

func TestRecoveryAndPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	s := newTestServer(t, 100, 100)
	w = s.do(t, http.MethodGet, "/ping", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1, zap.NewNop())
	now := time.Now()
	assert.True(t, rl.allow("1.2.3.4", now))
	assert.False(t, rl.allow("1.2.3.4", now))

	rl.Cleanup(now.Add(time.Hour), time.Minute)
	assert.Empty(t, rl.visitors)
	assert.True(t, rl.allow("1.2.3.4", now.Add(time.Hour)))
}

func preflight(t *testing.T, router http.Handler, path, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, 100, 100)

	for _, path := range []string{"/exercises", "/workouts", "/workouts/3/details"} {
		w := preflight(t, s.router, path, frontendOrigin)
		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Equal(t, frontendOrigin, w.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"), path)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete, path)
	}

	w := preflight(t, s.router, "/exercises", "http://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOnSimpleRequest(t *testing.T) {
	s := newTestServer(t, 100, 100)

	req := httptest.NewRequest(http.MethodGet, "/exercises", nil)
	req.Header.Set("Origin", frontendOrigin)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, frontendOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	assert.Nil(t, CORS(config.CORSConfig{}))
	assert.NotNil(t, CORS(config.CORSConfig{AllowedOrigins: []string{"*"}}))
}
