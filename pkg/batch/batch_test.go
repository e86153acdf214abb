package batch

import (
	"testing"

	"github.com/bbfold/bbfold/pkg/fixture"
	"github.com/bbfold/bbfold/pkg/prime"
)

const twoFuncJSON = `{
  "functions": {
    "0x1000": {
      "blocks": [
        {"id": 0, "start": 4096, "end": 4098, "succs": [1],
         "instructions": [{"addr": 4096, "itype": 1, "size": 2}]},
        {"id": 1, "start": 4098, "end": 4100, "succs": [],
         "instructions": [{"addr": 4098, "itype": 2, "size": 2}]}
      ]
    },
    "0x2000": {
      "blocks": [
        {"id": 0, "start": 8192, "end": 8194, "succs": [],
         "instructions": [{"addr": 8192, "itype": 3, "size": 2}]}
      ]
    }
  }
}`

func TestRunProcessesAllTasks(t *testing.T) {
	f, err := fixture.Parse([]byte(twoFuncJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	primes, err := prime.NewTable(prime.Sieve(prime.N))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	var tasks []Task
	for _, addr := range f.FunctionAddrs() {
		tasks = append(tasks, Task{FuncAddr: addr, Decoder: f, Builder: f, Primes: primes, MinFunctionSize: 1})
	}

	wp := NewWorkerPool(Config{NumWorkers: 2})
	outcomes := wp.Run(tasks)
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("outcome for %#x errored: %v", o.FuncAddr, o.Err)
		}
	}

	analyzed, _, completed := wp.Stats()
	if analyzed != 2 || completed != 2 {
		t.Fatalf("Stats() = analyzed=%d completed=%d, want 2/2", analyzed, completed)
	}
}

func TestRunReportsBuilderFailure(t *testing.T) {
	f, err := fixture.Parse([]byte(twoFuncJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	primes, err := prime.NewTable(prime.Sieve(prime.N))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	tasks := []Task{{FuncAddr: 0xdead, Decoder: f, Builder: f, Primes: primes}}
	wp := NewWorkerPool(Config{NumWorkers: 1})
	outcomes := wp.Run(tasks)
	if len(outcomes) != 1 || outcomes[0].Err == nil {
		t.Fatalf("expected a builder-failure error, got %+v", outcomes)
	}
}
