package httpapi

import (
	"net/http"
	"time"

	"github.com/park285/spycard-go/internal/spycard/catalog"
	smessages "github.com/park285/spycard-go/internal/spycard/messages"
	"github.com/park285/spycard-go/internal/spycard/model"
	"github.com/park285/spycard-go/internal/spycard/service"
)

func handleRegisterPlayer(w http.ResponseWriter, r *http.Request, deps Deps) {
	var req RegisterPlayerRequest
	if !readBody(w, r, deps, &req, "REGISTER_PLAYER") {
		return
	}
	deps.Logger.Info("REGISTER_PLAYER_REQUEST", "username", req.Username)

	start := time.Now()
	player, err := deps.Players.RegisterPlayer(r.Context(), req.Username)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "REGISTER_PLAYER", err, duration)
		return
	}

	deps.Logger.Info("REGISTER_PLAYER_SUCCESS", "playerId", player.ID, "duration", duration)
	respondJSON(w, http.StatusOK, toPlayerResponse(player), deps.Logger)
}

func handleJoinMission(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}
	deps.Logger.Info("JOIN_MISSION_REQUEST", "missionId", missionID, "playerId", playerID)

	start := time.Now()
	rec, created, err := deps.Players.JoinMission(r.Context(), missionID, playerID)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "JOIN_MISSION", err, duration)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	deps.Logger.Info("JOIN_MISSION_SUCCESS", "missionId", missionID, "playerId", playerID, "created", created, "duration", duration)
	respondJSON(w, status, toMissionPlayerResponse(rec), deps.Logger)
}

func handleGetMissionPlayer(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}

	start := time.Now()
	rec, err := deps.Players.GetMissionPlayer(r.Context(), missionID, playerID)
	if err != nil {
		respondServiceError(w, deps, "MISSION_PLAYER", err, time.Since(start).Milliseconds())
		return
	}
	respondJSON(w, http.StatusOK, toMissionPlayerResponse(rec), deps.Logger)
}

func handleUpdateOverall(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}
	var req UpdateOverallRequest
	if !readBody(w, r, deps, &req, "UPDATE_OVERALL") {
		return
	}
	deps.Logger.Info("UPDATE_OVERALL_REQUEST", "missionId", missionID, "playerId", playerID)

	start := time.Now()
	rec, err := deps.Aggregator.UpdateOverallScore(r.Context(), missionID, playerID, req.Score)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "UPDATE_OVERALL", err, duration)
		return
	}

	deps.Logger.Info("UPDATE_OVERALL_SUCCESS", "missionId", missionID, "playerId", playerID, "duration", duration)
	respondJSON(w, http.StatusOK, toMissionPlayerResponse(rec), deps.Logger)
}

func handleUpdateAbilities(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}
	var req UpdateAbilitiesRequest
	if !readBody(w, r, deps, &req, "UPDATE_ABILITIES") {
		return
	}
	deps.Logger.Info("UPDATE_ABILITIES_REQUEST", "missionId", missionID, "playerId", playerID, "fields", len(req.Abilities))

	partial, err := parseAbilityMap(req.Abilities)
	if err != nil {
		respondServiceError(w, deps, "UPDATE_ABILITIES", err, 0)
		return
	}

	start := time.Now()
	rec, err := deps.Aggregator.UpdateAbilityScores(r.Context(), missionID, playerID, partial)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "UPDATE_ABILITIES", err, duration)
		return
	}

	deps.Logger.Info("UPDATE_ABILITIES_SUCCESS", "missionId", missionID, "playerId", playerID, "duration", duration)
	respondJSON(w, http.StatusOK, toMissionPlayerResponse(rec), deps.Logger)
}

func handleScoreGame(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}
	gameRef, ok := pathValue(w, r, deps, "gameRef")
	if !ok {
		return
	}
	var req ScoreGameRequest
	if !readBody(w, r, deps, &req, "SCORE_GAME") {
		return
	}
	deps.Logger.Info("SCORE_GAME_REQUEST", "missionId", missionID, "playerId", playerID, "gameRef", gameRef)

	start := time.Now()
	result, err := deps.Games.ScoreGameResult(r.Context(), service.GameResultInput{
		MissionID:    missionID,
		PlayerID:     playerID,
		GameRef:      gameRef,
		BaseScore:    req.BaseScore,
		Difficulty:   model.Difficulty(req.Difficulty),
		IsWin:        req.IsWin,
		JudgePayload: req.JudgePayload,
	})
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "SCORE_GAME", err, duration)
		return
	}

	deps.Logger.Info("SCORE_GAME_SUCCESS", "missionId", missionID, "playerId", playerID, "judged", result.Judged, "duration", duration)
	respondJSON(w, http.StatusOK, GameScoreResponse{
		GameRef:   result.GameRef,
		Judged:    result.Judged,
		Rank:      result.Rank.String(),
		Abilities: abilityScoresToMap(result.Abilities),
		Record:    toMissionPlayerResponse(result.Record),
	}, deps.Logger)
}

func handleCompleteMission(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}
	var req CompleteMissionRequest
	if !readBody(w, r, deps, &req, "COMPLETE_MISSION") {
		return
	}
	deps.Logger.Info("COMPLETE_MISSION_REQUEST", "missionId", missionID, "players", len(req.Players))

	scores := make([]model.PlayerScore, 0, len(req.Players))
	for _, p := range req.Players {
		abilities, err := parseAbilityMap(p.Abilities)
		if err != nil {
			respondServiceError(w, deps, "COMPLETE_MISSION", err, 0)
			return
		}
		scores = append(scores, model.PlayerScore{PlayerID: p.PlayerID, Overall: p.Overall, Abilities: abilities})
	}

	start := time.Now()
	result, err := deps.Aggregator.CompleteMission(r.Context(), missionID, scores)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "COMPLETE_MISSION", err, duration)
		return
	}

	deps.Logger.Info("COMPLETE_MISSION_SUCCESS",
		"missionId", missionID,
		"completed", len(result.Completed),
		"failed", len(result.Failed),
		"duration", duration,
	)
	respondJSON(w, http.StatusOK, toCompleteMissionResponse(result), deps.Logger)
}

func handleRecalculate(w http.ResponseWriter, r *http.Request, deps Deps) {
	username, ok := pathValue(w, r, deps, "username")
	if !ok {
		return
	}
	deps.Logger.Info("RECALCULATE_REQUEST", "username", username)

	start := time.Now()
	result, err := deps.Aggregator.RecalculateProfileFromHistory(r.Context(), username)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "RECALCULATE", err, duration)
		return
	}

	resp := RecalculationResponse{
		Username:     result.Username,
		NoScores:     result.NoScores,
		TotalScore:   result.TotalScore,
		MissionCount: result.MissionCount,
	}
	if result.NoScores {
		resp.Message = deps.Messages.Get(smessages.ReportNoScores)
	} else {
		resp.OverallRank = result.OverallRank.String()
		resp.AbilityTotals = abilityScoresToMap(result.AbilityTotals)
	}

	deps.Logger.Info("RECALCULATE_SUCCESS", "username", username, "noScores", result.NoScores, "duration", duration)
	respondJSON(w, http.StatusOK, resp, deps.Logger)
}

func handleGetProfile(w http.ResponseWriter, r *http.Request, deps Deps) {
	username, ok := pathValue(w, r, deps, "username")
	if !ok {
		return
	}

	start := time.Now()
	profile, err := deps.Profiles.GetProfile(r.Context(), username)
	if err != nil {
		respondServiceError(w, deps, "PROFILE", err, time.Since(start).Milliseconds())
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(profile), deps.Logger)
}

func handleProfileAbilities(w http.ResponseWriter, r *http.Request, deps Deps) {
	username, ok := pathValue(w, r, deps, "username")
	if !ok {
		return
	}

	start := time.Now()
	report, err := deps.Reports.GetAbilityScoresFromSpyCard(r.Context(), username)
	if err != nil {
		respondServiceError(w, deps, "PROFILE_ABILITIES", err, time.Since(start).Milliseconds())
		return
	}
	respondJSON(w, http.StatusOK, report, deps.Logger)
}

func handlePlayerAbilities(w http.ResponseWriter, r *http.Request, deps Deps) {
	playerID, ok := pathPlayerID(w, r, deps)
	if !ok {
		return
	}
	deps.Logger.Info("PLAYER_ABILITIES_REQUEST", "playerId", playerID)

	start := time.Now()
	report, err := deps.Reports.CalculateAbilityScores(r.Context(), playerID)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		respondServiceError(w, deps, "PLAYER_ABILITIES", err, duration)
		return
	}

	deps.Logger.Info("PLAYER_ABILITIES_SUCCESS", "playerId", playerID, "totalGames", report.TotalGames, "duration", duration)
	respondJSON(w, http.StatusOK, report, deps.Logger)
}

func handleCatalogMission(w http.ResponseWriter, r *http.Request, deps Deps) {
	missionID, ok := pathValue(w, r, deps, "missionId")
	if !ok {
		return
	}

	start := time.Now()
	mission, err := deps.Catalog.Mission(r.Context(), missionID)
	if err != nil {
		respondServiceError(w, deps, "CATALOG_MISSION", err, time.Since(start).Milliseconds())
		return
	}

	games := make(map[model.Ability]catalog.Game, len(mission.Games))
	for a, ref := range mission.Games {
		g, err := deps.Catalog.Game(r.Context(), ref)
		if err != nil {
			respondServiceError(w, deps, "CATALOG_MISSION", err, time.Since(start).Milliseconds())
			return
		}
		games[a] = g
	}
	respondJSON(w, http.StatusOK, toCatalogMissionResponse(mission, games), deps.Logger)
}
