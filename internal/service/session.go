package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/aadupuli-backend/internal/apperror"
	"github.com/rocketscienceinc/aadupuli-backend/internal/config"
	"github.com/rocketscienceinc/aadupuli-backend/internal/entity"
	"github.com/rocketscienceinc/aadupuli-backend/internal/pkg"
)

// Subscriber receives a snapshot clone on every committed state change of
// one match. Sends are non-blocking: a subscriber that stops draining
// misses updates instead of stalling the game.
type Subscriber chan *entity.Match

const subscriberBuffer = 16

type matchArchive interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
}

type resultRecorder interface {
	RecordResult(ctx context.Context, match *entity.Match)
}

// SessionService owns the registry of live matches. All mutation of one
// match goes through its liveMatch mutex, so concurrent submissions are
// applied one at a time while different matches stay independent.
type SessionService interface {
	CreateMatch(ctx context.Context, playerID, preferredRole string, vsBot bool) (*entity.Match, error)
	CreateMatchForPair(ctx context.Context, tigerPlayerID, goatPlayerID string) (*entity.Match, error)
	JoinMatch(ctx context.Context, matchID, playerID string) (*entity.Match, error)
	GetMatch(ctx context.Context, matchID string) (*entity.Match, error)
	SubmitMove(ctx context.Context, matchID string, move entity.Move, playerID string) (*entity.Match, error)

	Subscribe(matchID string, sub Subscriber) (*entity.Match, error)
	Unsubscribe(matchID string, sub Subscriber)
	PlayerDisconnected(matchID, playerID string)
	PlayerReconnected(matchID, playerID string)

	Run(ctx context.Context)
}

type liveMatch struct {
	mu sync.Mutex

	match        *entity.Match
	subscribers  map[Subscriber]struct{}
	lastActivity time.Time
	graceTimers  map[string]*time.Timer
}

type sessionService struct {
	logger *slog.Logger
	conf   config.Game

	archive matchArchive
	stats   resultRecorder
	bot     BotService

	mu   sync.RWMutex
	live map[string]*liveMatch
}

func NewSessionService(logger *slog.Logger, conf config.Game, archive matchArchive, stats resultRecorder, bot BotService) SessionService {
	return &sessionService{
		logger:  logger,
		conf:    conf,
		archive: archive,
		stats:   stats,
		bot:     bot,
		live:    make(map[string]*liveMatch),
	}
}

func (that *sessionService) CreateMatch(ctx context.Context, playerID, preferredRole string, vsBot bool) (*entity.Match, error) {
	if preferredRole != entity.RoleTiger && preferredRole != entity.RoleGoat {
		return nil, fmt.Errorf("%w: unknown role %q", apperror.ErrValidation, preferredRole)
	}

	match := that.newMatch()

	if playerID != "" {
		if err := match.BindRole(preferredRole, playerID); err != nil {
			return nil, err
		}
	}

	if vsBot {
		botRole := entity.RoleGoat
		if preferredRole == entity.RoleGoat {
			botRole = entity.RoleTiger
		}
		if err := match.BindRole(botRole, BotPlayerID); err != nil {
			return nil, err
		}
	}

	that.register(match)
	that.logger.Info("match created", "matchID", match.ID, "playerID", playerID, "role", preferredRole, "vsBot", vsBot)

	// Goats open the game, so a bot holding the goat role moves first.
	that.maybePlayBot(match.ID)

	return match.Clone(), nil
}

func (that *sessionService) CreateMatchForPair(ctx context.Context, tigerPlayerID, goatPlayerID string) (*entity.Match, error) {
	match := that.newMatch()

	if err := match.BindRole(entity.RoleTiger, tigerPlayerID); err != nil {
		return nil, err
	}
	if err := match.BindRole(entity.RoleGoat, goatPlayerID); err != nil {
		return nil, err
	}

	that.register(match)
	that.logger.Info("match created for pair", "matchID", match.ID, "tiger", tigerPlayerID, "goat", goatPlayerID)

	return match.Clone(), nil
}

// JoinMatch binds the caller to the vacant role of a live match.
func (that *sessionService) JoinMatch(ctx context.Context, matchID, playerID string) (*entity.Match, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", apperror.ErrValidation)
	}

	lm, err := that.liveByID(matchID)
	if err != nil {
		return nil, err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if role := lm.match.RoleOf(playerID); role != "" {
		return lm.match.Clone(), nil
	}

	vacant := entity.RoleTiger
	if lm.match.TigerPlayerID != "" {
		vacant = entity.RoleGoat
	}

	if err = lm.match.BindRole(vacant, playerID); err != nil {
		return nil, err
	}

	lm.lastActivity = time.Now()
	snapshot := lm.match.Clone()
	that.broadcastLocked(lm, snapshot)

	return snapshot, nil
}

func (that *sessionService) GetMatch(ctx context.Context, matchID string) (*entity.Match, error) {
	if lm, err := that.liveByID(matchID); err == nil {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		return lm.match.Clone(), nil
	}

	match, err := that.archive.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get archived match: %w", err)
	}

	return match, nil
}

// SubmitMove applies one move under the match lock and fans the resulting
// snapshot out to every subscriber, the submitter's channel included.
func (that *sessionService) SubmitMove(ctx context.Context, matchID string, move entity.Move, playerID string) (*entity.Match, error) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		if _, archiveErr := that.archive.GetByID(ctx, matchID); archiveErr == nil {
			return nil, apperror.ErrGameOver
		}
		return nil, err
	}

	lm.mu.Lock()

	if role := lm.match.RoleOf(playerID); role != move.Player {
		lm.mu.Unlock()
		return nil, apperror.ErrNotYourTurn
	}

	if err = lm.match.ApplyMove(move); err != nil {
		lm.mu.Unlock()
		return nil, err
	}

	lm.lastActivity = time.Now()
	snapshot := lm.match.Clone()
	that.broadcastLocked(lm, snapshot)

	finished := lm.match.IsFinished()
	lm.mu.Unlock()

	if finished {
		that.finalize(ctx, snapshot)
	} else {
		that.maybePlayBot(matchID)
	}

	return snapshot, nil
}

// Subscribe registers a channel for the match and returns the current
// snapshot so the new viewer can render immediately.
func (that *sessionService) Subscribe(matchID string, sub Subscriber) (*entity.Match, error) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return nil, err
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.subscribers[sub] = struct{}{}

	return lm.match.Clone(), nil
}

func (that *sessionService) Unsubscribe(matchID string, sub Subscriber) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	delete(lm.subscribers, sub)
}

// PlayerDisconnected starts the forfeit grace timer for a bound player.
// If they do not come back in time the opponent wins.
func (that *sessionService) PlayerDisconnected(matchID, playerID string) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	role := lm.match.RoleOf(playerID)
	if role == "" || lm.match.IsFinished() {
		return
	}

	if _, pending := lm.graceTimers[playerID]; pending {
		return
	}

	log := that.logger.With("method", "PlayerDisconnected", "matchID", matchID, "playerID", playerID)
	log.Info("player disconnected, starting grace timer", "grace", that.conf.DisconnectGrace)

	lm.graceTimers[playerID] = time.AfterFunc(that.conf.DisconnectGrace, func() {
		that.forfeitDisconnected(matchID, playerID)
	})
}

// PlayerReconnected cancels a pending disconnect forfeit.
func (that *sessionService) PlayerReconnected(matchID, playerID string) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if timer, ok := lm.graceTimers[playerID]; ok {
		timer.Stop()
		delete(lm.graceTimers, playerID)
	}
}

func (that *sessionService) forfeitDisconnected(matchID, playerID string) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return
	}

	lm.mu.Lock()

	delete(lm.graceTimers, playerID)

	role := lm.match.RoleOf(playerID)
	if role == "" || lm.match.IsFinished() {
		lm.mu.Unlock()
		return
	}

	lm.match.Forfeit(role, entity.WinDisconnected)
	lm.lastActivity = time.Now()
	snapshot := lm.match.Clone()
	that.broadcastLocked(lm, snapshot)
	lm.mu.Unlock()

	that.logger.Info("match forfeited on disconnect", "matchID", matchID, "playerID", playerID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	that.finalize(ctx, snapshot)
}

// Run sweeps the registry until the context is canceled, evicting matches
// that have been idle longer than the configured timeout.
func (that *sessionService) Run(ctx context.Context) {
	log := that.logger.With("component", "session-janitor")

	ticker := time.NewTicker(that.conf.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.evictIdle(ctx, log)
		}
	}
}

func (that *sessionService) evictIdle(ctx context.Context, log *slog.Logger) {
	cutoff := time.Now().Add(-that.conf.IdleTimeout)

	that.mu.Lock()
	var evicted []*liveMatch
	for id, lm := range that.live {
		lm.mu.Lock()
		idle := lm.lastActivity.Before(cutoff)
		lm.mu.Unlock()

		if idle {
			delete(that.live, id)
			evicted = append(evicted, lm)
		}
	}
	that.mu.Unlock()

	for _, lm := range evicted {
		lm.mu.Lock()

		// An idle match that is still running was abandoned; the side
		// that stalled forfeits it, so the archive only ever holds
		// terminal matches.
		abandoned := !lm.match.IsFinished()
		if abandoned {
			lm.match.Forfeit(lm.match.ActivePlayer, entity.WinForfeit)
		}

		snapshot := lm.match.Clone()
		that.broadcastLocked(lm, snapshot)

		for sub := range lm.subscribers {
			delete(lm.subscribers, sub)
		}
		for playerID, timer := range lm.graceTimers {
			timer.Stop()
			delete(lm.graceTimers, playerID)
		}
		lm.mu.Unlock()

		log.Info("evicting idle match", "matchID", snapshot.ID, "abandoned", abandoned)

		if abandoned {
			that.finalize(ctx, snapshot)
			continue
		}

		if err := that.archive.CreateOrUpdate(ctx, snapshot); err != nil {
			log.Error("failed to archive evicted match", "matchID", snapshot.ID, "error", err)
		}
	}
}

func (that *sessionService) newMatch() *entity.Match {
	match := entity.NewMatch(pkg.GenerateMatchID(), entity.DefaultVariant)
	match.Repetition = entity.RepetitionRule{
		Threshold: that.conf.RepetitionThreshold,
		Winner:    that.conf.RepetitionWinner,
	}
	return match
}

func (that *sessionService) register(match *entity.Match) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.live[match.ID] = &liveMatch{
		match:        match,
		subscribers:  make(map[Subscriber]struct{}),
		lastActivity: time.Now(),
		graceTimers:  make(map[string]*time.Timer),
	}
}

func (that *sessionService) liveByID(matchID string) (*liveMatch, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	lm, ok := that.live[matchID]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}

	return lm, nil
}

// broadcastLocked pushes a snapshot to every subscriber of lm, dropping it
// for channels whose buffer is full. Callers must hold lm.mu.
func (that *sessionService) broadcastLocked(lm *liveMatch, snapshot *entity.Match) {
	for sub := range lm.subscribers {
		select {
		case sub <- snapshot:
		default:
		}
	}
}

// finalize archives a finished match and feeds the result to the stats
// collaborator. The live entry stays around until the janitor evicts it so
// late viewers still get the final state.
func (that *sessionService) finalize(ctx context.Context, snapshot *entity.Match) {
	log := that.logger.With("method", "finalize", "matchID", snapshot.ID)

	if err := that.archive.CreateOrUpdate(ctx, snapshot); err != nil {
		log.Error("failed to archive match", "error", err)
	}

	that.stats.RecordResult(ctx, snapshot)

	log.Info("match finished", "winner", snapshot.Winner, "reason", snapshot.WinReason)
}

// maybePlayBot lets the bot take its turn if the active role of the match
// is bound to the bot identity. It runs asynchronously so a human move
// returns without waiting for the reply.
func (that *sessionService) maybePlayBot(matchID string) {
	lm, err := that.liveByID(matchID)
	if err != nil {
		return
	}

	lm.mu.Lock()
	botTurn := !lm.match.IsFinished() && lm.match.PlayerOf(lm.match.ActivePlayer) == BotPlayerID
	snapshot := lm.match.Clone()
	lm.mu.Unlock()

	if !botTurn {
		return
	}

	go func() {
		move, err := that.bot.ChooseMove(snapshot)
		if err != nil {
			that.logger.Error("bot has no move", "matchID", matchID, "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err = that.SubmitMove(ctx, matchID, move, BotPlayerID); err != nil {
			that.logger.Error("bot failed to make turn", "matchID", matchID, "error", err)
		}
	}()
}
