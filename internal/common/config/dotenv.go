package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotenvPathEnv 는 기본 .env 대신 읽을 파일 목록(콤마 구분)을 지정하는 환경 변수다.
const DotenvPathEnv = "SPYCARD_ENV_FILE"

// LoadDotenvIfPresent: 존재하는 dotenv 파일만 골라 한 번에 읽는다.
// paths 가 비면 SPYCARD_ENV_FILE, 그것도 없으면 .env 를 본다. 이미 설정된 환경 변수는 덮어쓰지 않는다.
func LoadDotenvIfPresent(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
		if raw := strings.TrimSpace(os.Getenv(DotenvPathEnv)); raw != "" {
			paths = strings.Split(raw, ",")
		}
	}

	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat dotenv file failed path=%s: %w", path, err)
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv files failed paths=%v: %w", existing, err)
	}
	return nil
}
