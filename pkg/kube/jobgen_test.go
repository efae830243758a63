package kube

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
)

func TestJobName(t *testing.T) {
	now := time.Unix(0, 42)
	if got, want := JobName("/tmp/My Photo.ppm", filter.WhiteToRed, now), "ppm-filter-my-photo-whitetored-42"; got != want {
		t.Errorf("JobName() = %q, want %q", got, want)
	}

	long := JobName(strings.Repeat("x", 100)+".ppm", filter.Red, time.Now())
	if len(long) > 63 {
		t.Errorf("len(JobName()) = %d, want <= 63", len(long))
	}
	if strings.HasSuffix(long, "-") {
		t.Errorf("JobName() = %q ends with a dash", long)
	}
}

func TestJobNameKeepsTimestamp(t *testing.T) {
	inputs := []string{
		strings.Repeat("x", 100) + ".ppm",
		"holiday-photo-from-the-beach-at-sunset-2024.ppm",
		"---.ppm",
	}
	now := time.Unix(1700000000, 123456789)
	for _, input := range inputs {
		for _, k := range filter.Kinds() {
			first := JobName(input, k, now)
			second := JobName(input, k, now.Add(time.Hour))
			if first == second {
				t.Errorf("JobName(%q, %s) = %q for both runs", input, k, first)
			}
			stamp := strconv.FormatInt(now.UnixNano(), 10)
			if !strings.HasSuffix(first, "-"+strings.ToLower(k.String())+"-"+stamp) {
				t.Errorf("JobName(%q, %s) = %q, want filter and full timestamp suffix", input, k, first)
			}
			if len(first) > 63 || strings.Contains(first, "--") {
				t.Errorf("JobName(%q, %s) = %q, want <= 63 bytes without empty segments", input, k, first)
			}
		}
	}
}

func TestCreateJobRepeatedRuns(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	ctx := context.Background()
	start := time.Unix(1700000000, 0)

	for run := 0; run < 2; run++ {
		spec := FilterJob{
			Name:      JobName("holiday-photo-from-the-beach-at-sunset-2024.ppm", filter.WhiteToRed, start.Add(time.Duration(run)*time.Hour)),
			Namespace: "default",
			Kind:      filter.WhiteToRed,
		}
		if err := CreateJob(ctx, clientset, spec); err != nil {
			t.Fatalf("run %d: CreateJob() error = %v", run, err)
		}
	}
}

func TestBuildJob(t *testing.T) {
	job := BuildJob(FilterJob{
		Name:      "ppm-filter-in-violet-1",
		Namespace: "imaging",
		Image:     "example/ppmfilter:dev",
		Kind:      filter.Violet,
		InputURL:  "http://minio:9000/rasters/job1/in.ppm",
		OutputURL: "http://minio:9000/rasters/job1/processed/",
	})

	if job.Namespace != "imaging" || job.Labels["filter"] != "violet" {
		t.Errorf("job meta = %+v", job.ObjectMeta)
	}
	pod := job.Spec.Template.Spec
	if len(pod.InitContainers) != 1 || len(pod.Containers) != 1 {
		t.Fatalf("containers = %d init, %d main", len(pod.InitContainers), len(pod.Containers))
	}
	if !strings.Contains(pod.InitContainers[0].Command[2], "http://minio:9000/rasters/job1/in.ppm") {
		t.Errorf("init command = %q, want input URL", pod.InitContainers[0].Command[2])
	}

	ctr := pod.Containers[0]
	if ctr.Image != "example/ppmfilter:dev" {
		t.Errorf("image = %q", ctr.Image)
	}
	if !strings.Contains(ctr.Command[2], "ppmfilter /data/input.ppm") {
		t.Errorf("main command = %q, want the ppmfilter binary on the fetched input", ctr.Command[2])
	}
	if !strings.Contains(ctr.Command[2], "http://minio:9000/rasters/job1/processed/violet.ppm") {
		t.Errorf("main command = %q, want upload of violet.ppm", ctr.Command[2])
	}
	env := map[string]string{}
	for _, e := range ctr.Env {
		env[e.Name] = e.Value
	}
	if env["FILTERS"] != "violet" || env["OUTPUT_DIR"] != outputDir {
		t.Errorf("env = %v", env)
	}
}

func TestCreateJob(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	ctx := context.Background()

	for _, k := range filter.Kinds() {
		spec := FilterJob{
			Name:      JobName("in.ppm", k, time.Unix(0, 1)),
			Namespace: "default",
			Image:     "example/ppmfilter:dev",
			Kind:      k,
		}
		if err := CreateJob(ctx, clientset, spec); err != nil {
			t.Fatalf("CreateJob(%s) error = %v", k, err)
		}
	}

	jobs, err := clientset.BatchV1().Jobs("default").List(ctx, meta.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs.Items) != 4 {
		t.Errorf("created %d jobs, want 4", len(jobs.Items))
	}
}
