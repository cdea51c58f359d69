package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chillgrid/domain/signal"
)

func TestClassify_PriorityTable(t *testing.T) {
	cases := []struct {
		filename string
		want     signal.ChannelKind
	}{
		{"CHWST_Leaving_Temp.csv", signal.ChannelCHWST},
		{"chws-supply-temp.xlsx", signal.ChannelCHWST},
		{"CHW_Return_Temp.csv", signal.ChannelCHWRT},
		{"CHWRT.csv", signal.ChannelCHWRT},
		{"Condenser_Return_Water.csv", signal.ChannelCDWRT},
		{"CDW_RT.csv", signal.ChannelCDWRT},
		{"Chiller_Power_kW.csv", signal.ChannelPower},
		{"Flow_GPM.csv", signal.ChannelFlow},
		{"Humidity_Sensor_3.csv", signal.ChannelOther},
	}
	for _, c := range cases {
		t.Run(c.filename, func(t *testing.T) {
			got := Classify(c.filename)
			assert.Equal(t, c.want, got.Channel)
		})
	}
}

func TestClassify_CondenserTakesPriorityOverGenericPower(t *testing.T) {
	got := Classify("COND_LOAD_KW.csv")
	assert.Equal(t, signal.ChannelCDWRT, got.Channel)
}

func TestClassify_UnmatchedIsOtherWithZeroConfidence(t *testing.T) {
	got := Classify("unrelated_file.csv")
	assert.Equal(t, signal.ChannelOther, got.Channel)
	assert.Equal(t, 0.0, got.Confidence)
}

func TestClassifyAll_BuildsFeedMap(t *testing.T) {
	out := ClassifyAll([]string{"CHWST.csv", "CHWRT.csv"})
	assert.Equal(t, signal.ChannelCHWST, out.FeedMap["CHWST.csv"])
	assert.Equal(t, signal.ChannelCHWRT, out.FeedMap["CHWRT.csv"])
	assert.Len(t, out.Files, 2)
}
