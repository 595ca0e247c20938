package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
	"github.com/hackgods/clinic-appointment-scheduling/internal/config"
	"github.com/hackgods/clinic-appointment-scheduling/internal/db"
	"github.com/hackgods/clinic-appointment-scheduling/internal/logging"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var ranges = []string{
	"08:00-10:00",
	"09:00-12:00",
	"10:30-11:30",
	"11:00-14:00",
	"13:00-15:00",
	"14:00-17:00",
	"16:00-18:00",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init("seed", "prod")
		log.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.Init("seed", cfg.Env)

	if cfg.Store != config.StorePostgres {
		logger.Fatal().Str("store", cfg.Store).Msg("seed only writes to the postgres store")
	}

	doctors := getInt("SEED_DOCTORS", 50)
	patients := getInt("SEED_PATIENTS", 500)
	password := getEnv("SEED_PASSWORD", "password123")
	adminUser := getEnv("SEED_ADMIN_USER", "admin")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	gofakeit.Seed(time.Now().UnixNano())

	// One hash for every seeded account keeps the run fast.
	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}

	repo := appointment.NewPgRepository(pool)

	if err := seedAdmin(ctx, pool, adminUser, hash); err != nil {
		logger.Fatal().Err(err).Msg("seed admin")
	}
	if err := seedDoctors(ctx, repo, logger, doctors, hash); err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(ctx, repo, logger, patients, hash); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	logger.Info().
		Int("doctors", doctors).
		Int("patients", patients).
		Str("admin", adminUser).
		Msg("seed complete")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, username, hash string) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO admins (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, uuid.New(), username, hash)
	return err
}

// seedDoctors alternates between the two availability forms so both
// search paths have data.
func seedDoctors(ctx context.Context, repo *appointment.PgRepository, logger zerolog.Logger, count int, hash string) error {
	logger.Info().Int("count", count).Msg("seeding doctors")

	for i := 0; i < count; i++ {
		d := &appointment.Doctor{
			ID:           uuid.New(),
			Name:         "Dr. " + gofakeit.Name(),
			Specialty:    specialties[gofakeit.Number(0, len(specialties)-1)],
			Email:        uniqueEmail("dr", i),
			Phone:        gofakeit.Phone(),
			PasswordHash: hash,
		}

		if i%2 == 0 {
			d.AvailableTimes = randomRanges()
		} else {
			d.WeeklyAvailability = randomWeek()
		}

		if err := repo.CreateDoctor(ctx, d); err != nil {
			return fmt.Errorf("doctor %d: %w", i, err)
		}
	}

	logger.Info().Msg("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, repo *appointment.PgRepository, logger zerolog.Logger, count int, hash string) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 100

	for i := 0; i < count; i++ {
		p := &appointment.Patient{
			ID:           uuid.New(),
			Name:         gofakeit.Name(),
			Email:        uniqueEmail("patient", i),
			Phone:        gofakeit.Phone(),
			Address:      gofakeit.Street() + ", " + gofakeit.City(),
			PasswordHash: hash,
		}
		if err := repo.CreatePatient(ctx, p); err != nil {
			return fmt.Errorf("patient %d: %w", i, err)
		}

		if (i+1)%batchSize == 0 {
			logger.Debug().Int("done", i+1).Int("total", count).Msg("patients seeded")
		}
	}

	logger.Info().Msg("patients seeded")
	return nil
}

func uniqueEmail(prefix string, i int) string {
	local, domain, _ := strings.Cut(gofakeit.Email(), "@")
	return fmt.Sprintf("%s.%d.%s@%s", prefix, i, strings.ToLower(local), domain)
}

func randomRanges() []string {
	n := gofakeit.Number(1, 3)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ranges[gofakeit.Number(0, len(ranges)-1)])
	}
	return out
}

func randomWeek() map[time.Weekday][]appointment.TimeOfDay {
	week := make(map[time.Weekday][]appointment.TimeOfDay)
	for day := time.Monday; day <= time.Friday; day++ {
		if !gofakeit.Bool() {
			continue
		}
		start := gofakeit.Number(8, 15)
		week[day] = []appointment.TimeOfDay{
			appointment.NewTimeOfDay(start, 0),
			appointment.NewTimeOfDay(start+2, 0),
		}
	}
	if len(week) == 0 {
		week[time.Monday] = []appointment.TimeOfDay{appointment.NewTimeOfDay(9, 0)}
	}
	return week
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	var n int
	if v := os.Getenv(key); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
