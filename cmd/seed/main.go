package main

import (
	"flag"
	"os"

	"flock/internal/config"
	"flock/internal/database"
	"flock/internal/middleware"
	"flock/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "posts per user")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(db, opts); err != nil {
		middleware.Logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("Seeding completed", "users", opts.Users, "posts_per_user", opts.PostsPerUser)
}
