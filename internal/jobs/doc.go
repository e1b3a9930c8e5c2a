// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package jobs runs commands in a fixed pool of concurrent child processes.
//
// A Scheduler owns N job slots. Submit starts a process in a free slot,
// reaping finished children first when every slot is taken. Each finished
// child is classified by its exit status: success, a soft failure that is
// reported at the end of the run, or a fatal outcome that stops the run.
//
// Processes are created through the Spawner interface so the scheduling
// logic can be exercised without starting real processes.
package jobs
