package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/betpool/tracker/internal/auth"
	"github.com/betpool/tracker/internal/infra"
)

func main() {
	subject := flag.String("subject", "", "token subject, usually the admin's name")
	role := flag.String("role", auth.RoleAdmin, "admin role: "+strings.Join(auth.AllAdminRoles(), ", "))
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAdminExpiry).GenerateAdminToken(*subject, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(2)
	}
	fmt.Println(token)
}
