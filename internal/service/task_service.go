package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/events"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/phrazzld/taskhub/internal/taskquery"
)

// OwnerDirectory answers whether a user exists. store.UserStore satisfies it.
type OwnerDirectory interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// TaskStats summarizes task counts, globally or for one owner.
type TaskStats struct {
	UserID     *int64 `json:"user_id,omitempty"`
	Total      int    `json:"total_tasks"`
	Todo       int    `json:"todo_count"`
	InProgress int    `json:"in_progress_count"`
	Completed  int    `json:"completed_count"`
}

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask validates candidate, checks that its owner exists, defaults
	// status to TODO and priority to MEDIUM, and stores it.
	CreateTask(ctx context.Context, candidate *domain.Task) (*domain.Task, error)

	GetTaskByID(ctx context.Context, id int64) (*domain.Task, error)
	GetAllTasks(ctx context.Context) ([]*domain.Task, error)

	// UpdateTask overwrites title, description and owner. An empty status or
	// priority keeps the stored value. A new owner must exist.
	UpdateTask(ctx context.Context, id int64, candidate *domain.Task) (*domain.Task, error)

	// UpdateTaskStatus and UpdateTaskPriority replace a single field. Any
	// status may follow any other.
	UpdateTaskStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error)
	UpdateTaskPriority(ctx context.Context, id int64, priority domain.Priority) (*domain.Task, error)

	DeleteTask(ctx context.Context, id int64) error

	GetTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error)
	GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
	GetTasksByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error)
	GetTasksByUserAndStatus(ctx context.Context, userID int64, status domain.TaskStatus) ([]*domain.Task, error)
	GetTasksByUserAndPriority(ctx context.Context, userID int64, priority domain.Priority) ([]*domain.Task, error)
	GetCompletedTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error)
	GetPendingTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error)
	GetHighPriorityTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error)
	SearchTasksByTitle(ctx context.Context, fragment string) ([]*domain.Task, error)
	GetAllTasksSortedByCreatedDate(ctx context.Context) ([]*domain.Task, error)
	GetTasksByUserIDSortedByPriority(ctx context.Context, userID int64) ([]*domain.Task, error)

	// FilterTasks returns the tasks matching every set field of criteria.
	FilterTasks(ctx context.Context, criteria taskquery.Criteria) ([]*domain.Task, error)

	GetTotalTaskCount(ctx context.Context) (int, error)
	GetTaskCountByUserID(ctx context.Context, userID int64) (int, error)
	GetTaskCountByStatus(ctx context.Context, status domain.TaskStatus) (int, error)

	// GetTaskStats counts tasks per status, for userID if non-nil or globally.
	GetTaskStats(ctx context.Context, userID *int64) (*TaskStats, error)

	// DeleteAllTasksByUserID removes every task of an existing owner and
	// returns how many were removed.
	DeleteAllTasksByUserID(ctx context.Context, userID int64) (int, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks   store.TaskStore
	owners  OwnerDirectory
	locks   *OwnerLocks
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
// locks must be the same OwnerLocks given to the UserService so that task
// writes and user deletion are serialized per owner.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	owners OwnerDirectory,
	locks *OwnerLocks,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if owners == nil {
		return nil, domain.NewValidationError("owners", "cannot be nil", domain.ErrValidation)
	}
	if locks == nil {
		return nil, domain.NewValidationError("locks", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:   tasks,
		owners:  owners,
		locks:   locks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, candidate *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if candidate != nil && candidate.ID != 0 {
		return nil, domain.NewValidationError("id", "must not be set when creating a task", domain.ErrInvalidID)
	}
	if err := candidate.Validate(); err != nil {
		log.Debug("rejected task candidate", slog.String("error", err.Error()))
		return nil, err
	}

	task := candidate.Clone()
	task.ApplyDefaults()

	unlock := s.locks.Lock(task.UserID)
	defer unlock()

	if err := s.requireOwner(ctx, "create_task", task.UserID); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, s.internal(ctx, "create_task", "failed to store task", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID))
	s.emitTask(ctx, events.TaskCreated, task)

	return task, nil
}

// GetTaskByID implements TaskService.GetTaskByID
func (s *taskServiceImpl) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}
	return s.getTask(ctx, "get_task", id)
}

// GetAllTasks implements TaskService.GetAllTasks
func (s *taskServiceImpl) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, candidate *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	existing, unlock, err := s.lockTask(ctx, "update_task", id, candidate.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if candidate.UserID != existing.UserID {
		if err := s.requireOwner(ctx, "update_task", candidate.UserID); err != nil {
			return nil, err
		}
	}

	updated := existing.Clone()
	updated.Title = candidate.Title
	updated.Description = candidate.Description
	updated.UserID = candidate.UserID
	if candidate.Status != "" {
		updated.Status = candidate.Status
	}
	if candidate.Priority != "" {
		updated.Priority = candidate.Priority
	}

	if err := s.write(ctx, "update_task", updated); err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.Int64("task_id", id),
		slog.Int64("user_id", updated.UserID))
	s.emitTask(ctx, events.TaskUpdated, updated)

	return updated, nil
}

// UpdateTaskStatus implements TaskService.UpdateTaskStatus
func (s *taskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
) (*domain.Task, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	return s.patch(ctx, "update_task_status", id, func(t *domain.Task) { t.Status = status })
}

// UpdateTaskPriority implements TaskService.UpdateTaskPriority
func (s *taskServiceImpl) UpdateTaskPriority(
	ctx context.Context,
	id int64,
	priority domain.Priority,
) (*domain.Task, error) {
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	return s.patch(ctx, "update_task_priority", id, func(t *domain.Task) { t.Priority = priority })
}

// patch fetches the task under its owner's lock, applies change and writes
// the whole record back.
func (s *taskServiceImpl) patch(
	ctx context.Context,
	op string,
	id int64,
	change func(t *domain.Task),
) (*domain.Task, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return nil, err
	}

	task, unlock, err := s.lockTask(ctx, op, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	change(task)

	if err := s.write(ctx, op, task); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task patched",
		slog.String("operation", op),
		slog.Int64("task_id", id),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	s.emitTask(ctx, events.TaskUpdated, task)

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	if err := domain.ValidateID("id", id); err != nil {
		return err
	}

	task, err := s.getTask(ctx, "delete_task", id)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return NewTaskNotFoundError(id)
		}
		return s.internal(ctx, "delete_task", "failed to remove task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted", slog.Int64("task_id", id))
	s.emitTask(ctx, events.TaskDeleted, task)

	return nil
}

// GetTasksByUserID implements TaskService.GetTasksByUserID
func (s *taskServiceImpl) GetTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.findForOwner(ctx, "get_tasks_by_user", userID, taskquery.ByOwner(userID))
}

// GetTasksByStatus implements TaskService.GetTasksByStatus
func (s *taskServiceImpl) GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	return s.find(ctx, "get_tasks_by_status", taskquery.ByStatus(status))
}

// GetTasksByPriority implements TaskService.GetTasksByPriority
func (s *taskServiceImpl) GetTasksByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	return s.find(ctx, "get_tasks_by_priority", taskquery.ByPriority(priority))
}

// GetTasksByUserAndStatus implements TaskService.GetTasksByUserAndStatus
func (s *taskServiceImpl) GetTasksByUserAndStatus(
	ctx context.Context,
	userID int64,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	return s.findForOwner(ctx, "get_tasks_by_user_and_status", userID, taskquery.ByOwnerAndStatus(userID, status))
}

// GetTasksByUserAndPriority implements TaskService.GetTasksByUserAndPriority
func (s *taskServiceImpl) GetTasksByUserAndPriority(
	ctx context.Context,
	userID int64,
	priority domain.Priority,
) ([]*domain.Task, error) {
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	return s.findForOwner(ctx, "get_tasks_by_user_and_priority", userID,
		taskquery.ByOwnerAndPriority(userID, priority))
}

// GetCompletedTasksByUserID implements TaskService.GetCompletedTasksByUserID
func (s *taskServiceImpl) GetCompletedTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.findForOwner(ctx, "get_completed_tasks", userID, taskquery.CompletedByOwner(userID))
}

// GetPendingTasksByUserID implements TaskService.GetPendingTasksByUserID
func (s *taskServiceImpl) GetPendingTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.findForOwner(ctx, "get_pending_tasks", userID, taskquery.PendingByOwner(userID))
}

// GetHighPriorityTasksByUserID implements TaskService.GetHighPriorityTasksByUserID
func (s *taskServiceImpl) GetHighPriorityTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.findForOwner(ctx, "get_high_priority_tasks", userID, taskquery.HighPriorityByOwner(userID))
}

// SearchTasksByTitle implements TaskService.SearchTasksByTitle
func (s *taskServiceImpl) SearchTasksByTitle(ctx context.Context, fragment string) ([]*domain.Task, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, domain.NewValidationError("title", "search text cannot be empty", domain.ErrEmptyContent)
	}
	return s.find(ctx, "search_tasks_by_title", taskquery.TitleContains(fragment))
}

// GetAllTasksSortedByCreatedDate implements TaskService.GetAllTasksSortedByCreatedDate
func (s *taskServiceImpl) GetAllTasksSortedByCreatedDate(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	return taskquery.SortByRecency(tasks), nil
}

// GetTasksByUserIDSortedByPriority implements TaskService.GetTasksByUserIDSortedByPriority
func (s *taskServiceImpl) GetTasksByUserIDSortedByPriority(ctx context.Context, userID int64) ([]*domain.Task, error) {
	tasks, err := s.findForOwner(ctx, "get_tasks_sorted_by_priority", userID, taskquery.ByOwner(userID))
	if err != nil {
		return nil, err
	}
	return taskquery.SortByPriority(tasks), nil
}

// FilterTasks implements TaskService.FilterTasks
func (s *taskServiceImpl) FilterTasks(ctx context.Context, criteria taskquery.Criteria) ([]*domain.Task, error) {
	if criteria.Status != nil {
		if err := domain.ValidateStatus(*criteria.Status); err != nil {
			return nil, err
		}
	}
	if criteria.Priority != nil {
		if err := domain.ValidatePriority(*criteria.Priority); err != nil {
			return nil, err
		}
	}
	if criteria.IsEmpty() {
		return s.GetAllTasks(ctx)
	}
	if criteria.UserID != nil {
		return s.findForOwner(ctx, "filter_tasks", *criteria.UserID, criteria.Filter())
	}
	return s.find(ctx, "filter_tasks", criteria.Filter())
}

// GetTotalTaskCount implements TaskService.GetTotalTaskCount
func (s *taskServiceImpl) GetTotalTaskCount(ctx context.Context) (int, error) {
	n, err := s.tasks.Count(ctx)
	if err != nil {
		return 0, s.internal(ctx, "count_tasks", "failed to count tasks", err)
	}
	return n, nil
}

// GetTaskCountByUserID implements TaskService.GetTaskCountByUserID
// It takes no owner lock; UserService calls it while holding one.
func (s *taskServiceImpl) GetTaskCountByUserID(ctx context.Context, userID int64) (int, error) {
	if err := s.requireOwner(ctx, "count_tasks_by_user", userID); err != nil {
		return 0, err
	}
	n, err := s.tasks.CountByUserID(ctx, userID)
	if err != nil {
		return 0, s.internal(ctx, "count_tasks_by_user", "failed to count tasks", err)
	}
	return n, nil
}

// GetTaskCountByStatus implements TaskService.GetTaskCountByStatus
func (s *taskServiceImpl) GetTaskCountByStatus(ctx context.Context, status domain.TaskStatus) (int, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return 0, err
	}
	n, err := s.tasks.CountByStatus(ctx, status)
	if err != nil {
		return 0, s.internal(ctx, "count_tasks_by_status", "failed to count tasks", err)
	}
	return n, nil
}

// GetTaskStats implements TaskService.GetTaskStats
func (s *taskServiceImpl) GetTaskStats(ctx context.Context, userID *int64) (*TaskStats, error) {
	var (
		tasks []*domain.Task
		err   error
	)
	if userID != nil {
		tasks, err = s.findForOwner(ctx, "task_stats", *userID, taskquery.ByOwner(*userID))
	} else {
		tasks, err = s.GetAllTasks(ctx)
	}
	if err != nil {
		return nil, err
	}

	stats := &TaskStats{UserID: userID, Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusTodo:
			stats.Todo++
		case domain.TaskStatusInProgress:
			stats.InProgress++
		case domain.TaskStatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// DeleteAllTasksByUserID implements TaskService.DeleteAllTasksByUserID
// It takes no owner lock; UserService calls it while holding one.
func (s *taskServiceImpl) DeleteAllTasksByUserID(ctx context.Context, userID int64) (int, error) {
	if err := s.requireOwner(ctx, "delete_tasks_by_user", userID); err != nil {
		return 0, err
	}

	n, err := s.tasks.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, s.internal(ctx, "delete_tasks_by_user", "failed to remove tasks", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("deleted all tasks for user",
		slog.Int64("user_id", userID),
		slog.Int("deleted", n))
	emit(ctx, s.logger, s.emitter, events.OwnerTasksDeleted, events.OwnerTasksPayload{UserID: userID, Deleted: n})

	return n, nil
}

// requireOwner validates userID and checks that the user exists.
func (s *taskServiceImpl) requireOwner(ctx context.Context, op string, userID int64) error {
	if err := domain.ValidateID("user_id", userID); err != nil {
		return err
	}
	exists, err := s.owners.ExistsByID(ctx, userID)
	if err != nil {
		return s.internal(ctx, op, "failed to check owner", err)
	}
	if !exists {
		logger.FromContextOrDefault(ctx, s.logger).Debug("owner not found",
			slog.String("operation", op),
			slog.Int64("user_id", userID))
		return NewUserNotFoundError("id", userID)
	}
	return nil
}

// lockTask returns task id read while holding the lock of its stored owner,
// plus the locks of any extra owners. Every write that stores a task's owner
// holds that lock, so the owner cannot change or be deleted until unlock is
// called. If the owner changed between the first read and the lock, it
// starts over.
func (s *taskServiceImpl) lockTask(
	ctx context.Context,
	op string,
	id int64,
	extra ...int64,
) (*domain.Task, func(), error) {
	for {
		seen, err := s.getTask(ctx, op, id)
		if err != nil {
			return nil, nil, err
		}

		unlock := s.locks.Lock(append([]int64{seen.UserID}, extra...)...)
		current, err := s.getTask(ctx, op, id)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if current.UserID == seen.UserID {
			return current, unlock, nil
		}
		unlock()

		logger.FromContextOrDefault(ctx, s.logger).Debug("task owner changed while locking, retrying",
			slog.String("operation", op),
			slog.Int64("task_id", id))
	}
}

func (s *taskServiceImpl) getTask(ctx context.Context, op string, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskNotFoundError(id)
		}
		return nil, s.internal(ctx, op, "failed to retrieve task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) write(ctx context.Context, op string, task *domain.Task) error {
	if err := s.tasks.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return NewTaskNotFoundError(task.ID)
		}
		return s.internal(ctx, op, "failed to store task", err)
	}
	return nil
}

func (s *taskServiceImpl) find(ctx context.Context, op string, f taskquery.Filter) ([]*domain.Task, error) {
	tasks, err := s.tasks.Find(ctx, f)
	if err != nil {
		return nil, s.internal(ctx, op, "failed to query tasks", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) findForOwner(
	ctx context.Context,
	op string,
	userID int64,
	f taskquery.Filter,
) ([]*domain.Task, error) {
	if err := s.requireOwner(ctx, op, userID); err != nil {
		return nil, err
	}
	return s.find(ctx, op, f)
}

func (s *taskServiceImpl) internal(ctx context.Context, op, message string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error(message,
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return NewServiceError("task", op, message, err)
}

func (s *taskServiceImpl) emitTask(ctx context.Context, eventType string, t *domain.Task) {
	emit(ctx, s.logger, s.emitter, eventType, events.TaskPayload{
		TaskID:   t.ID,
		UserID:   t.UserID,
		Status:   string(t.Status),
		Priority: string(t.Priority),
	})
}
