package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-scheduling/internal/logging"
)

// The simulator races many patients for the same doctor slot and reports
// how many of the races ended with more than one booking.

type SimConfig struct {
	APIBaseURL string
	Patients   int
	Rounds     int
	Date       string
	Location   *time.Location
	Password   string
}

// bookingStats counts booking attempts by outcome. The outcome is
// "created" for a 201, the API error code otherwise, or "transport" when
// the request never got a response.
type bookingStats struct {
	mu        sync.Mutex
	outcomes  map[string]int
	latencies []time.Duration
}

func (b *bookingStats) add(outcome string, latency time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.outcomes == nil {
		b.outcomes = make(map[string]int)
	}
	b.outcomes[outcome]++
	b.latencies = append(b.latencies, latency)
}

type latencySummary struct {
	Mean, P50, P95, Max time.Duration
}

func (b *bookingStats) summary() (map[string]int, latencySummary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[string]int, len(b.outcomes))
	for k, v := range b.outcomes {
		counts[k] = v
	}
	n := len(b.latencies)
	if n == 0 {
		return counts, latencySummary{}
	}

	sorted := append([]time.Duration(nil), b.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, l := range sorted {
		total += l
	}
	return counts, latencySummary{
		Mean: total / time.Duration(n),
		P50:  sorted[percentileIndex(n, 50)],
		P95:  sorted[percentileIndex(n, 95)],
		Max:  sorted[n-1],
	}
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type raceResult struct {
	Slot    string
	Winners int
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	log     zerolog.Logger
	tokens  []string
	booking bookingStats
	results []raceResult
}

func main() {
	logger := logging.Init("simulate", getEnv("APP_ENV", "dev"))

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Str("api", cfg.APIBaseURL).
		Int("patients", cfg.Patients).
		Int("rounds", cfg.Rounds).
		Str("date", cfg.Date).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("simulation failed")
	}

	sim.PrintReport()
}

func loadConfig() SimConfig {
	loc, err := time.LoadLocation(getEnv("SIM_TIMEZONE", "UTC"))
	if err != nil {
		loc = time.UTC
	}
	return SimConfig{
		APIBaseURL: strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Patients:   getInt("SIM_PATIENTS", 20),
		Rounds:     getInt("SIM_ROUNDS", 5),
		Date:       getEnv("SIM_DATE", time.Now().AddDate(0, 0, 1).Format("2006-01-02")),
		Location:   loc,
		Password:   getEnv("SIM_PASSWORD", "sim-password"),
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.Patients < 2 {
		return fmt.Errorf("SIM_PATIENTS must be at least 2")
	}
	if cfg.Rounds <= 0 {
		return fmt.Errorf("SIM_ROUNDS must be > 0")
	}
	if _, err := time.Parse("2006-01-02", cfg.Date); err != nil {
		return fmt.Errorf("SIM_DATE must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func (s *Simulator) Run(ctx context.Context) error {
	if err := s.registerPatients(ctx); err != nil {
		return err
	}

	doctorID, err := s.pickDoctor(ctx)
	if err != nil {
		return err
	}

	slots, err := s.freeSlots(ctx, doctorID)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return errors.New("doctor has no free slots on the simulated date")
	}

	rounds := s.config.Rounds
	if rounds > len(slots) {
		rounds = len(slots)
	}

	for i := 0; i < rounds; i++ {
		at, err := time.ParseInLocation("2006-01-02 15:04", s.config.Date+" "+slots[i], s.config.Location)
		if err != nil {
			return fmt.Errorf("slot %q: %w", slots[i], err)
		}
		winners := s.race(ctx, doctorID, at)
		s.results = append(s.results, raceResult{Slot: slots[i], Winners: winners})
		s.log.Info().Str("slot", slots[i]).Int("winners", winners).Msg("race finished")
	}
	return nil
}

// race fires one booking per patient at the same slot, released together.
func (s *Simulator) race(ctx context.Context, doctorID uuid.UUID, at time.Time) int {
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		winners int64
	)

	for _, token := range s.tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			<-start
			if s.book(ctx, token, doctorID, at) {
				atomic.AddInt64(&winners, 1)
			}
		}(token)
	}

	close(start)
	wg.Wait()
	return int(winners)
}

func (s *Simulator) book(ctx context.Context, token string, doctorID uuid.UUID, at time.Time) bool {
	body, _ := json.Marshal(map[string]any{
		"doctor_id":        doctorID.String(),
		"appointment_time": at,
	})

	begin := time.Now()
	resp, err := s.do(ctx, http.MethodPost, "/appointments", token, body)
	latency := time.Since(begin)
	if err != nil {
		s.booking.add("transport", latency)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		s.booking.add("created", latency)
		return true
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&apiErr) != nil || apiErr.Error == "" {
		apiErr.Error = strconv.Itoa(resp.StatusCode)
	}
	s.booking.add(apiErr.Error, latency)
	return false
}

func (s *Simulator) registerPatients(ctx context.Context) error {
	for i := 0; i < s.config.Patients; i++ {
		email := fmt.Sprintf("sim.%s@example.com", uuid.NewString()[:12])
		body, _ := json.Marshal(map[string]string{
			"name":     gofakeit.Name(),
			"email":    email,
			"phone":    gofakeit.Phone() + strconv.Itoa(i),
			"address":  gofakeit.Street(),
			"password": s.config.Password,
		})
		resp, err := s.do(ctx, http.MethodPost, "/patient", "", body)
		if err != nil {
			return fmt.Errorf("register patient: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("register patient: status %d", resp.StatusCode)
		}

		token, err := s.login(ctx, email)
		if err != nil {
			return err
		}
		s.tokens = append(s.tokens, token)
	}
	s.log.Info().Int("patients", len(s.tokens)).Msg("patients registered")
	return nil
}

func (s *Simulator) login(ctx context.Context, email string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": s.config.Password})

	// logins are rate limited per IP; back off until the bucket refills
	var resp *http.Response
	for attempt := 0; ; attempt++ {
		var err error
		resp, err = s.do(ctx, http.MethodPost, "/patient/login", "", body)
		if err != nil {
			return "", fmt.Errorf("login: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= 20 {
			break
		}
		resp.Body.Close()
		time.Sleep(250 * time.Millisecond)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: status %d", resp.StatusCode)
	}

	var tok struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return tok.Token, nil
}

func (s *Simulator) pickDoctor(ctx context.Context) (uuid.UUID, error) {
	if v := os.Getenv("SIM_DOCTOR_ID"); v != "" {
		return uuid.Parse(v)
	}

	resp, err := s.do(ctx, http.MethodGet, "/doctor", "", nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list doctors: %w", err)
	}
	defer resp.Body.Close()

	var doctors []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doctors); err != nil {
		return uuid.Nil, fmt.Errorf("list doctors: %w", err)
	}
	if len(doctors) == 0 {
		return uuid.Nil, errors.New("no doctors; run the seed first")
	}
	return doctors[0].ID, nil
}

func (s *Simulator) freeSlots(ctx context.Context, doctorID uuid.UUID) ([]string, error) {
	path := fmt.Sprintf("/doctor/%s/availability/%s", doctorID, s.config.Date)
	resp, err := s.do(ctx, http.MethodGet, path, s.tokens[0], nil)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability: status %d", resp.StatusCode)
	}

	var out struct {
		Slots []struct {
			Start string `json:"start"`
		} `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}

	starts := make([]string, 0, len(out.Slots))
	for _, sl := range out.Slots {
		starts = append(starts, sl.Start)
	}
	return starts, nil
}

func (s *Simulator) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.client.Do(req)
}

func (s *Simulator) PrintReport() {
	counts, lat := s.booking.summary()

	outcomes := make([]string, 0, len(counts))
	for k := range counts {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("races: %d   patients per race: %d\n", len(s.results), len(s.tokens))
	for _, o := range outcomes {
		fmt.Printf("  %-20s %6d\n", o, counts[o])
	}
	fmt.Printf("latency mean=%s p50=%s p95=%s max=%s\n",
		lat.Mean.Round(time.Millisecond), lat.P50.Round(time.Millisecond),
		lat.P95.Round(time.Millisecond), lat.Max.Round(time.Millisecond))

	doubleBooked := 0
	for _, r := range s.results {
		if r.Winners > 1 {
			doubleBooked++
			fmt.Printf("  slot %s booked %d times\n", r.Slot, r.Winners)
		}
	}
	fmt.Printf("double-booked slots: %d of %d\n", doubleBooked, len(s.results))
	fmt.Println(strings.Repeat("-", 60))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
