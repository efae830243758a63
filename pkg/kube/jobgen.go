package kube

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/retry"

	"github.com/PhantomInTheWire/ppm-filter-pipeline/pkg/filter"
)

const (
	appLabel  = "ppm-filter"
	dataMount = "/data"
	inputFile = dataMount + "/input.ppm"
	outputDir = dataMount + "/out"

	// binary is the command built from apps/ppmfilter.
	binary = "ppmfilter"

	namePrefix = "ppm-filter-"
	maxNameLen = 63
)

var invalidName = regexp.MustCompile(`[^a-z0-9-]`)

func int32Ptr(i int32) *int32 { return &i }

// FilterJob describes one Job that runs a single filter over a raster held
// in object storage.
type FilterJob struct {
	Name      string
	Namespace string
	Image     string
	Kind      filter.Kind
	// InputURL is fetched into the pod; the output is PUT under OutputURL.
	InputURL  string
	OutputURL string
}

// JobName derives a DNS-safe Job name from the input file and filter. The
// input name is shortened so the filter and timestamp always fit in 63 bytes.
func JobName(input string, kind filter.Kind, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	base = strings.Trim(invalidName.ReplaceAllString(strings.ToLower(base), "-"), "-")
	suffix := strings.Trim(invalidName.ReplaceAllString(strings.ToLower(kind.String()), "-"), "-") +
		"-" + strconv.FormatInt(now.UnixNano(), 10)

	room := maxNameLen - len(namePrefix) - len(suffix) - 1
	if len(base) > room {
		base = strings.TrimRight(base[:max(room, 0)], "-")
	}
	if base == "" {
		return namePrefix + suffix
	}
	return namePrefix + base + "-" + suffix
}

// NewClientset loads the kubeconfig from the default home location.
func NewClientset() (kubernetes.Interface, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building clientset: %w", err)
	}
	return clientset, nil
}

// BuildJob renders the Job spec:
// 1) an init container downloads the input raster
// 2) the filter container runs the CLI restricted to one filter
// 3) the result is uploaded back next to the input
func BuildJob(spec FilterJob) *batchv1.Job {
	output := spec.Kind.Output()

	return &batchv1.Job{
		ObjectMeta: meta.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels: map[string]string{
				"app":    appLabel,
				"filter": spec.Kind.String(),
			},
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: int32Ptr(1),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: meta.ObjectMeta{
					Labels: map[string]string{"job-name": spec.Name},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyOnFailure,

					InitContainers: []corev1.Container{{
						Name:  "fetch-input",
						Image: "curlimages/curl:7.85.0",
						Command: []string{
							"sh", "-c",
							fmt.Sprintf("curl -sf %s -o %s && ls -l %s", spec.InputURL, inputFile, dataMount),
						},
						VolumeMounts: []corev1.VolumeMount{{
							Name:      "data",
							MountPath: dataMount,
						}},
					}},

					Containers: []corev1.Container{{
						Name:  "filter",
						Image: spec.Image,
						Command: []string{
							"sh", "-c",
							fmt.Sprintf(
								"mkdir -p %s && %s %s && "+
									"curl -sf -X PUT -T %s/%s %s/%s",
								outputDir, binary, inputFile,
								outputDir, output, strings.TrimSuffix(spec.OutputURL, "/"), output,
							),
						},
						Env: []corev1.EnvVar{
							{Name: "FILTERS", Value: spec.Kind.String()},
							{Name: "OUTPUT_DIR", Value: outputDir},
							{Name: "INPUT_URL", Value: spec.InputURL},
							{Name: "OUTPUT_URL", Value: spec.OutputURL},
						},
						VolumeMounts: []corev1.VolumeMount{{
							Name:      "data",
							MountPath: dataMount,
						}},
					}},

					Volumes: []corev1.Volume{{
						Name: "data",
						VolumeSource: corev1.VolumeSource{
							EmptyDir: &corev1.EmptyDirVolumeSource{},
						},
					}},
				},
			},
		},
	}
}

// CreateJob submits the Job for spec, retrying on conflicts.
func CreateJob(ctx context.Context, clientset kubernetes.Interface, spec FilterJob) error {
	job := BuildJob(spec)
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		_, err := clientset.BatchV1().Jobs(spec.Namespace).Create(ctx, job, meta.CreateOptions{})
		return err
	})
}
