package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"contentos/internal/api/middleware"
	"contentos/internal/config"
	"contentos/internal/db"
	"contentos/internal/models"
	"contentos/internal/utils/crypto"
	"contentos/internal/utils/logger"
)

// 🔑 Development helper CLI: secret key generation, at-rest encryption
// checks and dev JWT minting.
//
//	helper genkey
//	helper encrypt <plaintext>
//	helper decrypt <ciphertext>
//	helper token <email>
func main() {
	log := logger.New("helper")

	if len(os.Args) < 2 {
		log.Info("usage: helper [genkey|encrypt|decrypt|token] ...")
		os.Exit(1)
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Error("❌ Failed to load environment variables", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("❌ Failed to load configuration", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "genkey":
		key, err := crypto.GenerateSecretKey()
		if err != nil {
			log.Error("❌ Failed to generate key", err)
			os.Exit(1)
		}
		fmt.Println(key)

	case "encrypt", "decrypt":
		if len(os.Args) < 3 {
			log.Info("usage: helper %s <value>", os.Args[1])
			os.Exit(1)
		}
		if err := crypto.InitializeKeys(cfg.Crypto.SecretKey); err != nil {
			log.Error("❌ Failed to initialize keys", err)
			os.Exit(1)
		}
		var out string
		if os.Args[1] == "encrypt" {
			out, err = crypto.Encrypt(os.Args[2])
		} else {
			out, err = crypto.Decrypt(os.Args[2])
		}
		if err != nil {
			log.Error("❌ Operation failed", err)
			os.Exit(1)
		}
		fmt.Println(out)

	case "token":
		if len(os.Args) < 3 {
			log.Info("usage: helper token <email>")
			os.Exit(1)
		}
		email := os.Args[2]

		if err := db.Connect(cfg); err != nil {
			log.Error("❌ Failed to connect to database", err)
			os.Exit(1)
		}

		user := models.User{Email: email}
		if err := db.GetDB().Where("email = ?", email).FirstOrCreate(&user).Error; err != nil {
			log.Error("❌ Failed to find or create user", err)
			os.Exit(1)
		}

		token, err := middleware.GenerateToken(cfg.JWT.Secret, user.ID, user.Email, "", 30*24*time.Hour)
		if err != nil {
			log.Error("❌ Failed to sign token", err)
			os.Exit(1)
		}
		log.Success("✅ Token for %s (user %s):", email, user.ID)
		fmt.Println(token)

	default:
		log.Info("unknown command %q", os.Args[1])
		os.Exit(1)
	}
}
