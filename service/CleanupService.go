// Copyright 2024-2025 TrackSpace Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/trackspace/workflow-scheme-service/metrics"
	"github.com/trackspace/workflow-scheme-service/repository"
)

// CleanupService periodically purges workflow schemes that were soft-deleted
// longer ago than the configured retention period.
type CleanupService interface {
	CreateCleanupJob(schedule string) error
}

func NewCleanupService(schemeRepository repository.WorkflowSchemeRepository, systemInfoService SystemInfoService) CleanupService {
	return &cleanupServiceImpl{
		schemeRepository:  schemeRepository,
		systemInfoService: systemInfoService,
		cron:              cron.New(),
	}
}

type cleanupServiceImpl struct {
	schemeRepository  repository.WorkflowSchemeRepository
	systemInfoService SystemInfoService
	cron              *cron.Cron
}

func (c *cleanupServiceImpl) CreateCleanupJob(schedule string) error {
	job := schemeCleanupJob{
		schemeRepository:  c.schemeRepository,
		systemInfoService: c.systemInfoService,
	}
	if len(c.cron.Entries()) == 0 {
		c.cron.Start()
	}
	_, err := c.cron.AddJob(schedule, &job)
	if err != nil {
		log.Warnf("[CleanupService] Job wasn't added for schedule - %s. With error - %s", schedule, err)
		return err
	}
	log.Infof("[CleanupService] Job was created with schedule - %s", schedule)
	return nil
}

type schemeCleanupJob struct {
	schemeRepository  repository.WorkflowSchemeRepository
	systemInfoService SystemInfoService
}

func (j *schemeCleanupJob) Run() {
	retentionDays := j.systemInfoService.GetSchemesCleanupRetentionDays()
	deletedBefore := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := j.schemeRepository.CleanupDeletedSchemes(deletedBefore)
	if err != nil {
		log.Errorf("[CleanupService] Failed to purge deleted workflow schemes: %s", err)
		return
	}
	metrics.SchemesCleanedUp.WithLabelValues().Set(float64(removed))
	log.Infof("[CleanupService] Purged %d workflow schemes deleted before %v", removed, deletedBefore)
}
